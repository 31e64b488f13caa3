package linkedart

// Context is the JSON-LD context for every exported document.
const Context = "https://linked.art/ns/v1/linked-art.json"

// AATNamespace is the base IRI for Getty AAT terms.
const AATNamespace = "http://vocab.getty.edu/aat/"

// ULANNamespace is the base IRI for Getty ULAN agents.
const ULANNamespace = "http://vocab.getty.edu/ulan/"

// Classes used as the JSON-LD "type" of exported nodes.
const (
	ClassHumanMadeObject  = "HumanMadeObject"
	ClassPerson           = "Person"
	ClassGroup            = "Group"
	ClassActivity         = "Activity"
	ClassAcquisition      = "Acquisition"
	ClassPayment          = "Payment"
	ClassRight            = "Right"
	ClassRightAcquisition = "RightAcquisition"
	ClassTransferCustody  = "TransferOfCustody"
	ClassDestruction      = "Destruction"
	ClassEvent            = "Event"
	ClassMonetaryAmount   = "MonetaryAmount"
	ClassDimension        = "Dimension"
	ClassTimeSpan         = "TimeSpan"
	ClassLinguisticObject = "LinguisticObject"
	ClassName             = "Name"
	ClassIdentifier       = "Identifier"
	ClassType             = "Type"
	ClassCurrency         = "Currency"
	ClassMeasurementUnit  = "MeasurementUnit"
	ClassPlace            = "Place"
)

// Properties emitted on exported nodes.
const (
	PropContext            = "@context"
	PropID                 = "id"
	PropType               = "type"
	PropLabel              = "_label"
	PropClassifiedAs       = "classified_as"
	PropContent            = "content"
	PropPart               = "part"
	PropTimespan           = "timespan"
	PropReferredToBy       = "referred_to_by"
	PropIdentifiedBy       = "identified_by"
	PropTransferredTitleOf = "transferred_title_of"
	PropTransferredFrom    = "transferred_title_from"
	PropTransferredTo      = "transferred_title_to"
	PropPaidAmount         = "paid_amount"
	PropPaidFrom           = "paid_from"
	PropPaidTo             = "paid_to"
	PropCarriedOutBy       = "carried_out_by"
	PropEstablishes        = "establishes"
	PropPossessedBy        = "possessed_by"
	PropAppliesTo          = "applies_to"
	PropDimension          = "dimension"
	PropEndsBeforeStartOf  = "ends_before_the_start_of"
	PropStartsAfterEndOf   = "starts_after_the_end_of"
	PropDestroyedBy        = "destroyed_by"
	PropCausedBy           = "caused_by"
	PropCustodyOf          = "transferred_custody_of"
	PropCustodyFrom        = "transferred_custody_from"
	PropEncountered        = "encountered"
	PropExactMatch         = "exact_match"
	PropCurrentOwner       = "current_owner"
	PropCurrentLocation    = "current_location"
	PropBeginOfTheBegin    = "begin_of_the_begin"
	PropEndOfTheEnd        = "end_of_the_end"
	PropValue              = "value"
	PropUnit               = "unit"
	PropCurrency           = "currency"
)

// Getty AAT terms.
const (
	AATProvenanceEntry = AATNamespace + "300055863"
	AATTheft           = AATNamespace + "300055292"
	AATLooting         = AATNamespace + "300379554"
	AATLoss            = AATNamespace + "300417655"
	AATInventorying    = AATNamespace + "300077506"
	AATOwnershipRight  = AATNamespace + "300055603"
	AATPercent         = AATNamespace + "300417377"
	AATFire            = AATNamespace + "300068986"
	AATNote            = AATNamespace + "300027200"
	AATBriefText       = AATNamespace + "300418049"
	AATPrimaryName     = AATNamespace + "300404670"
	AATLocalNumber     = AATNamespace + "300404621"
)

// Local terms that have no AAT equivalent.
const (
	// LocalSaleAsReturn classifies a sale that returns an object to its
	// original owner.
	LocalSaleAsReturn = "tag:getty.edu,2019:digital:pipeline:vocab#XXXXXX005"

	// ProblematicRecord classifies notes attached to records flagged as
	// problematic by the data editors.
	ProblematicRecord = "tag:getty.edu,2019:digital:pipeline:ProblematicRecord"
)
