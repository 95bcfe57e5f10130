package causelist

import "strings"

// SectionType classifies the cause-list section a case was listed under.
type SectionType string

const (
	SectionAdmission         SectionType = "ADMISSION"
	SectionForHearing        SectionType = "FOR_HEARING"
	SectionSeparateList      SectionType = "SEPARATE_LIST"
	SectionUrgentMemo        SectionType = "URGENT_MEMO"
	SectionMediationList     SectionType = "MEDIATION_LIST"
	SectionArbitrationList   SectionType = "ARBITRATION_LIST"
	SectionSupplementaryList SectionType = "SUPPLEMENTARY_LIST"
	SectionDailyList         SectionType = "DAILY_LIST"
	SectionUnknown           SectionType = "UNKNOWN"
)

// CaseCategory is the broad category of a listed case.
type CaseCategory string

const (
	CategoryCivil       CaseCategory = "CIVIL"
	CategoryCriminal    CaseCategory = "CRIMINAL"
	CategoryMediation   CaseCategory = "MEDIATION"
	CategoryArbitration CaseCategory = "ARBITRATION"
	CategoryOther       CaseCategory = "OTHER"
)

// AdvocateRole is the side the advocate appears for in a listing.
type AdvocateRole string

const (
	RolePetitionerAdvocate AdvocateRole = "PETITIONER_ADVOCATE"
	RoleRespondentAdvocate AdvocateRole = "RESPONDENT_ADVOCATE"
	RoleOther              AdvocateRole = "OTHER"
)

// ListingStatus is the procedural status recorded against a listing.
type ListingStatus string

const (
	StatusAdmitted           ListingStatus = "ADMITTED"
	StatusAllowed            ListingStatus = "ALLOWED"
	StatusDisposed           ListingStatus = "DISPOSED"
	StatusPartHeard          ListingStatus = "PART_HEARD"
	StatusServiceNotComplete ListingStatus = "SERVICE_NOT_COMPLETE"
	StatusAdjourned          ListingStatus = "ADJOURNED"
	StatusNotAdmitted        ListingStatus = "NOT_ADMITTED"
	StatusUnknown            ListingStatus = "UNKNOWN"
)

// Listing is one structured cause-list entry for an advocate, as produced by
// the LLM stage. Fields the model cannot ground stay empty; they are never
// invented downstream.
type Listing struct {
	SerialNumber             string        `json:"serial_number,omitempty"`
	IsSubItem                bool          `json:"is_sub_item,omitempty"`
	ParentSerialNumber       string        `json:"parent_serial_number,omitempty"`
	CourtNumber              string        `json:"court_number,omitempty"`
	CourtCode                string        `json:"court_code,omitempty"`
	Judges                   []string      `json:"judges,omitempty"`
	SectionType              SectionType   `json:"section_type,omitempty"`
	SectionLabel             string        `json:"section_label,omitempty"`
	CaseNumberRaw            string        `json:"case_number_raw,omitempty"`
	CaseType                 string        `json:"case_type,omitempty"`
	CaseNumber               string        `json:"case_number,omitempty"`
	CaseYear                 string        `json:"case_year,omitempty"`
	CaseCategory             CaseCategory  `json:"case_category,omitempty"`
	FilingModeRaw            string        `json:"filing_mode_raw,omitempty"`
	BenchType                string        `json:"bench_type,omitempty"`
	PetitionerNames          []string      `json:"petitioner_names,omitempty"`
	RespondentNames          []string      `json:"respondent_names,omitempty"`
	AdvocateRole             AdvocateRole  `json:"advocate_role,omitempty"`
	AdvocateRoleDetail       string        `json:"advocate_role_detail,omitempty"`
	RepresentedParties       []string      `json:"represented_parties,omitempty"`
	IsLeadAdvocate           bool          `json:"is_lead_advocate,omitempty"`
	Status                   ListingStatus `json:"status,omitempty"`
	Remarks                  string        `json:"remarks,omitempty"`
	AllPetitionerAdvocates   []string      `json:"all_petitioner_advocates,omitempty"`
	AllRespondentAdvocates   []string      `json:"all_respondent_advocates,omitempty"`
	InterlocutoryApplication []string      `json:"interlocutory_applications,omitempty"`
	LinkedCases              []string      `json:"linked_cases,omitempty"`
	PendingCompliance        string        `json:"pending_compliance,omitempty"`
	InterimOrderExpiry       string        `json:"interim_order_expiry,omitempty"`
	UrgentMemoBy             string        `json:"urgent_memo_by,omitempty"`
	UrgentMemoServiceStatus  string        `json:"urgent_memo_service_status,omitempty"`
	PageNumber               int           `json:"page_number,omitempty"`
}

// NormalizeEnums maps out-of-vocabulary enum values emitted by the model to
// their closed-set fallbacks.
func (l *Listing) NormalizeEnums() {
	switch SectionType(strings.ToUpper(string(l.SectionType))) {
	case SectionAdmission, SectionForHearing, SectionSeparateList, SectionUrgentMemo,
		SectionMediationList, SectionArbitrationList, SectionSupplementaryList, SectionDailyList:
		l.SectionType = SectionType(strings.ToUpper(string(l.SectionType)))
	case "":
		l.SectionType = ""
	default:
		l.SectionType = SectionUnknown
	}

	switch CaseCategory(strings.ToUpper(string(l.CaseCategory))) {
	case CategoryCivil, CategoryCriminal, CategoryMediation, CategoryArbitration:
		l.CaseCategory = CaseCategory(strings.ToUpper(string(l.CaseCategory)))
	case "":
		l.CaseCategory = ""
	default:
		l.CaseCategory = CategoryOther
	}

	switch AdvocateRole(strings.ToUpper(string(l.AdvocateRole))) {
	case RolePetitionerAdvocate, RoleRespondentAdvocate:
		l.AdvocateRole = AdvocateRole(strings.ToUpper(string(l.AdvocateRole)))
	case "":
		l.AdvocateRole = ""
	default:
		l.AdvocateRole = RoleOther
	}

	switch ListingStatus(strings.ToUpper(string(l.Status))) {
	case StatusAdmitted, StatusAllowed, StatusDisposed, StatusPartHeard,
		StatusServiceNotComplete, StatusAdjourned, StatusNotAdmitted:
		l.Status = ListingStatus(strings.ToUpper(string(l.Status)))
	case "":
		l.Status = ""
	default:
		l.Status = StatusUnknown
	}
}
