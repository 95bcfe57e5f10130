package causelist

import "testing"

func TestNormalizeEnums(t *testing.T) {
	cases := []struct {
		name string
		in   Listing
		want Listing
	}{
		{
			name: "known values pass through",
			in:   Listing{SectionType: "FOR_HEARING", CaseCategory: "CIVIL", AdvocateRole: "PETITIONER_ADVOCATE", Status: "ADJOURNED"},
			want: Listing{SectionType: SectionForHearing, CaseCategory: CategoryCivil, AdvocateRole: RolePetitionerAdvocate, Status: StatusAdjourned},
		},
		{
			name: "lowercase is folded",
			in:   Listing{SectionType: "admission", CaseCategory: "criminal", Status: "disposed"},
			want: Listing{SectionType: SectionAdmission, CaseCategory: CategoryCriminal, Status: StatusDisposed},
		},
		{
			name: "out of vocabulary falls back",
			in:   Listing{SectionType: "SPECIAL_BENCH", CaseCategory: "TAX", AdvocateRole: "AMICUS", Status: "LISTED_TOMORROW"},
			want: Listing{SectionType: SectionUnknown, CaseCategory: CategoryOther, AdvocateRole: RoleOther, Status: StatusUnknown},
		},
		{
			name: "empty stays empty",
			in:   Listing{},
			want: Listing{},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			l := tc.in
			l.NormalizeEnums()
			if l.SectionType != tc.want.SectionType {
				t.Errorf("section_type = %q, want %q", l.SectionType, tc.want.SectionType)
			}
			if l.CaseCategory != tc.want.CaseCategory {
				t.Errorf("case_category = %q, want %q", l.CaseCategory, tc.want.CaseCategory)
			}
			if l.AdvocateRole != tc.want.AdvocateRole {
				t.Errorf("advocate_role = %q, want %q", l.AdvocateRole, tc.want.AdvocateRole)
			}
			if l.Status != tc.want.Status {
				t.Errorf("status = %q, want %q", l.Status, tc.want.Status)
			}
		})
	}
}
