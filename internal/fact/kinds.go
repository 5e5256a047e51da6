package fact

// Kind tags the closed set of fact entity kinds the schema knows about.
// The source system (a Clojure/Datomic ledger) relies on runtime keyword
// tagging for this; here it is a closed Go string enum so every switch
// over Kind is exhaustive-checkable.
type Kind string

const (
	KindContract           Kind = "contract"
	KindInstallment        Kind = "installment"
	KindFee                Kind = "fee"
	KindPayment            Kind = "payment"
	KindDisbursement       Kind = "disbursement"
	KindDepositMovement    Kind = "deposit-movement"
	KindPrincipalAllocation Kind = "principal-allocation"
	KindRateAdjustment     Kind = "rate-adjustment"
	KindDocumentSnapshot   Kind = "document-snapshot"
	KindSigning            Kind = "signing"
	KindParty              Kind = "party"
	KindFacility           Kind = "facility"
)

// FeeType is the closed set of fee classifications (spec.md §3 Fee entity).
type FeeType string

const (
	FeeManagement FeeType = "management"
	FeeLate       FeeType = "late"
	FeeProcessing FeeType = "processing"
	FeeInsurance  FeeType = "insurance"
)

func (t FeeType) Valid() bool {
	switch t {
	case FeeManagement, FeeLate, FeeProcessing, FeeInsurance:
		return true
	}
	return false
}

// DisbursementType is the closed set of disbursement classifications.
// Only DisbursementRefund enters the waterfall, with a negative effect
// (spec.md §3 Disbursement entity).
type DisbursementType string

const (
	DisbursementFunding       DisbursementType = "funding"
	DisbursementRefund        DisbursementType = "refund"
	DisbursementExcessReturn  DisbursementType = "excess-return"
)

func (t DisbursementType) Valid() bool {
	switch t {
	case DisbursementFunding, DisbursementRefund, DisbursementExcessReturn:
		return true
	}
	return false
}

// DepositType is the closed set of deposit-movement classifications.
// Only DepositOffset enters the waterfall; the transfer-* pair moves
// collateral between contracts (spec.md §3 Deposit movement entity).
type DepositType string

const (
	DepositReceived     DepositType = "received"
	DepositRefund       DepositType = "refund"
	DepositOffset       DepositType = "offset"
	DepositTransferIn   DepositType = "transfer-in"
	DepositTransferOut  DepositType = "transfer-out"
)

func (t DepositType) Valid() bool {
	switch t {
	case DepositReceived, DepositRefund, DepositOffset, DepositTransferIn, DepositTransferOut:
		return true
	}
	return false
}

// DepositSource is the closed set of deposit-movement origins.
type DepositSource string

const (
	DepositSourceCustomer DepositSource = "customer"
	DepositSourceFunding  DepositSource = "funding"
)

func (s DepositSource) Valid() bool {
	switch s {
	case DepositSourceCustomer, DepositSourceFunding, "":
		return true
	}
	return false
}

// DocumentKind is the closed set of document-snapshot kinds (spec.md §4.9).
type DocumentKind string

const (
	DocumentClearanceLetter    DocumentKind = "clearance-letter"
	DocumentStatement          DocumentKind = "statement"
	DocumentContractAgreement  DocumentKind = "contract-agreement"
	DocumentReport             DocumentKind = "report"
)

func (k DocumentKind) Valid() bool {
	switch k {
	case DocumentClearanceLetter, DocumentStatement, DocumentContractAgreement, DocumentReport:
		return true
	}
	return false
}

// SigningMethod is the closed set of signing methods (spec.md §3 Signing).
type SigningMethod string

const (
	SigningWetInk  SigningMethod = "wet-ink"
	SigningDigital SigningMethod = "digital"
)

func (m SigningMethod) Valid() bool {
	switch m {
	case SigningWetInk, SigningDigital:
		return true
	}
	return false
}

// PartyKind is the closed set of party kinds (spec.md §3 Party).
type PartyKind string

const (
	PartyCompany PartyKind = "company"
	PartyPerson  PartyKind = "person"
)

func (k PartyKind) Valid() bool {
	switch k {
	case PartyCompany, PartyPerson:
		return true
	}
	return false
}

// ReasonTag is the closed taxonomy of transaction-metadata reasons
// (spec.md §4.11 / §7).
type ReasonTag string

const (
	ReasonCorrection        ReasonTag = "correction"
	ReasonDuplicateRemoval  ReasonTag = "duplicate-removal"
	ReasonErroneousEntry    ReasonTag = "erroneous-entry"
	ReasonReversal          ReasonTag = "reversal"
	ReasonSupersession      ReasonTag = "supersession"
	ReasonBoarding          ReasonTag = "boarding"
	ReasonOperational       ReasonTag = "operational"
	ReasonMigration         ReasonTag = "migration"
)

func (r ReasonTag) Valid() bool {
	switch r {
	case ReasonCorrection, ReasonDuplicateRemoval, ReasonErroneousEntry, ReasonReversal,
		ReasonSupersession, ReasonBoarding, ReasonOperational, ReasonMigration:
		return true
	}
	return false
}
