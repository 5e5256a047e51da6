package fact

// Schema declares, per entity kind, which attributes are unique across
// the store and which references are component-owned for the purpose of
// cascade-retract (spec.md §3 Ownership, §4.2, §4.3).
//
// "Component-owned" mirrors the contract's lifetime ownership of its
// installments, fees, principal-allocations, disbursements, payments, and
// deposits: retracting a contract (not itself a supported operation in
// practice, since boarding is atomic — spec.md §3) would cascade to all
// of these. Retracting a document cascades to its signings.
var ownedChildKinds = map[Kind][]Kind{
	KindContract: {
		KindInstallment,
		KindFee,
		KindPrincipalAllocation,
		KindDisbursement,
		KindPayment,
		KindDepositMovement,
	},
	KindDocumentSnapshot: {
		KindSigning,
	},
}

// OwnedChildKinds returns the entity kinds owned by parent, for cascade
// retraction.
func OwnedChildKinds(parent Kind) []Kind {
	return ownedChildKinds[parent]
}

// UniqueAttribute names one attribute that must be unique across the
// store, optionally scoped (e.g. CR-number is unique within companies,
// not across all parties).
type UniqueAttribute struct {
	Kind  Kind
	Attr  string
	Scope string // optional; e.g. "company" or "person" for party jurisdiction ids
}

// UniqueAttributes enumerates spec.md invariant 4 and §6's identifier
// list: every *-id, plus contract/external-id, party/cr-number (within
// companies), and party/national-id (within persons).
var UniqueAttributes = []UniqueAttribute{
	{Kind: KindContract, Attr: "contract/id"},
	{Kind: KindContract, Attr: "contract/external-id"},
	{Kind: KindInstallment, Attr: "installment/id"},
	{Kind: KindFee, Attr: "fee/id"},
	{Kind: KindPayment, Attr: "payment/id"},
	{Kind: KindDisbursement, Attr: "disbursement/id"},
	{Kind: KindDepositMovement, Attr: "deposit/id"},
	{Kind: KindPrincipalAllocation, Attr: "principal-allocation/id"},
	{Kind: KindRateAdjustment, Attr: "rate-adjustment/id"},
	{Kind: KindDocumentSnapshot, Attr: "document-snapshot/id"},
	{Kind: KindSigning, Attr: "signing/id"},
	{Kind: KindSigning, Attr: "signing/document-signatory"}, // composite (document-ref, signatory-ref)
	{Kind: KindParty, Attr: "party/id"},
	{Kind: KindParty, Attr: "party/cr-number", Scope: string(PartyCompany)},
	{Kind: KindParty, Attr: "party/national-id", Scope: string(PartyPerson)},
	{Kind: KindFacility, Attr: "facility/id"},
}
