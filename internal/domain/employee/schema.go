// Package employee describes the employee personal record edited in the dashboard:
// the static field registry, the in-memory draft and the value normalizers.
package employee

import (
	"slices"
	"strings"
)

// Kind selects the input control for a field.
type Kind string

const (
	KindText   Kind = "text"
	KindDate   Kind = "date"
	KindSelect Kind = "select"
	KindFile   Kind = "file"
)

// FileRole distinguishes the two file fields, which name their uploads differently.
type FileRole string

const (
	RoleNone      FileRole = ""
	RolePhoto     FileRole = "photo"
	RoleSignature FileRole = "signature"
)

// Field is one entry of the registry.
type Field struct {
	Name      string
	Label     string
	Kind      Kind
	Options   []string
	Required  bool
	Section   string
	MaxLength int
	// Numeric hints a numeric keypad for text fields holding counts.
	Numeric bool
	Role    FileRole
}

// Section groups fields for display.
type Section struct {
	Name   string
	Fields []Field
}

// Field names referenced by behavior rather than only by the registry.
const (
	FieldEmpCode     = "emp_code"
	FieldDateOfBirth = "date_of_birth"
	FieldPhoto       = "emp_photo"
	FieldSignature   = "emp_signature"
)

const (
	SectionIdentity    = "Identity"
	SectionFamily      = "Family"
	SectionPersonal    = "Personal"
	SectionContact     = "Contact"
	SectionDocuments   = "Documents"
	SectionCareer      = "Education & Career"
	SectionPresent     = "Present Address"
	SectionPermanent   = "Permanent Address"
	SectionBangla      = "Bangla"
	SectionReference   = "Reference"
	SectionAttachments = "Attachments"
)

var (
	sexOptions           = []string{"", "male", "female", "other"}
	religionOptions      = []string{"", "islam", "hindu", "buddhist", "christian", "other"}
	bloodGroupOptions    = []string{"", "A+", "A-", "B+", "B-", "O+", "O-", "AB+", "AB-"}
	maritalStatusOptions = []string{"", "single", "married", "divorced", "widowed", "other"}
	contractualOptions   = []string{"", "Y", "N"}
)

func text(name, label, section string, maxLen int) Field {
	return Field{Name: name, Label: label, Kind: KindText, Section: section, MaxLength: maxLen}
}

func required(f Field) Field {
	f.Required = true
	return f
}

func numeric(f Field) Field {
	f.Numeric = true
	return f
}

func choice(name, label, section string, maxLen int, options []string) Field {
	return Field{Name: name, Label: label, Kind: KindSelect, Section: section, MaxLength: maxLen, Options: options}
}

// registry mirrors the EMP_PERSONAL table. Order is display order.
var registry = []Field{
	required(text(FieldEmpCode, "Employee Code", SectionIdentity, 10)),
	required(text("emp_name", "Employee Name", SectionIdentity, 64)),
	text("card_no", "Card No", SectionIdentity, 10),

	required(text("father_name", "Father's Name", SectionFamily, 36)),
	text("mother_name", "Mother's Name", SectionFamily, 32),
	text("husband_name", "Husband's Name", SectionFamily, 32),
	numeric(text("child_male", "Male Children", SectionFamily, 3)),
	numeric(text("child_female", "Female Children", SectionFamily, 3)),

	required(Field{Name: FieldDateOfBirth, Label: "Date of Birth", Kind: KindDate, Section: SectionPersonal}),
	required(choice("sex", "Sex", SectionPersonal, 6, sexOptions)),
	choice("religion", "Religion", SectionPersonal, 10, religionOptions),
	choice("blood_group", "Blood Group", SectionPersonal, 4, bloodGroupOptions),
	choice("marital_status", "Marital Status", SectionPersonal, 8, maritalStatusOptions),
	text("nationality", "Nationality", SectionPersonal, 32),
	text("town_of_birth", "Town of Birth", SectionPersonal, 30),
	choice("contractual", "Contractual", SectionPersonal, 1, contractualOptions),

	required(text("contact_no", "Contact No", SectionContact, 30)),
	text("emergency_cell", "Emergency Cell", SectionContact, 30),
	text("emrg_cell_no", "Emergency Contact No", SectionContact, 16),
	text("emrg_address", "Emergency Address", SectionContact, 64),
	text("e_mail", "E-mail", SectionContact, 32),
	text("nominee_cell_no", "Nominee Cell No", SectionContact, 15),

	required(text("national_id", "National ID", SectionDocuments, 20)),
	text("birth_certificate_no", "Birth Certificate No", SectionDocuments, 20),
	text("smart_id", "Smart ID", SectionDocuments, 16),
	text("pasport_no", "Passport No", SectionDocuments, 16),
	text("tin_no", "TIN No", SectionDocuments, 16),

	text("education", "Education", SectionCareer, 32),
	text("passed_year", "Passed Year", SectionCareer, 32),
	text("employement", "Employment", SectionCareer, 12),
	text("last_exp", "Last Experience", SectionCareer, 32),
	text("curr_activity", "Current Activity", SectionCareer, 32),
	text("sob", "Source of Business", SectionCareer, 32),

	text("present_house", "House", SectionPresent, 36),
	text("present_vill", "Village", SectionPresent, 48),
	text("present_ps", "Police Station", SectionPresent, 32),
	text("present_dist", "District", SectionPresent, 32),
	text("present_postal_code", "Postal Code", SectionPresent, 6),
	text("present_address", "Address", SectionPresent, 96),
	text("pre_house_owner", "House Owner", SectionPresent, 32),

	text("parmanent_house", "House", SectionPermanent, 48),
	text("parmanent_vill", "Village", SectionPermanent, 36),
	text("parmanent_ps", "Police Station", SectionPermanent, 32),
	text("parmanent_dist", "District", SectionPermanent, 32),
	text("permanent_postal_code", "Postal Code", SectionPermanent, 6),
	text("permanent_address", "Address", SectionPermanent, 96),
	text("parmenent_address", "Address (Additional)", SectionPermanent, 40),

	text("bang_emp_name", "Employee Name (Bangla)", SectionBangla, 64),
	text("bang_father_name", "Father's Name (Bangla)", SectionBangla, 32),
	text("bang_mother_name", "Mother's Name (Bangla)", SectionBangla, 32),
	text("bang_husband_name", "Husband's Name (Bangla)", SectionBangla, 32),
	text("pre_house_owner_bang", "House Owner (Bangla)", SectionBangla, 48),
	text("bang_present_vill", "Present Village (Bangla)", SectionBangla, 48),
	text("bang_present_post", "Present Post Office (Bangla)", SectionBangla, 36),
	text("bang_present_ps", "Present Police Station (Bangla)", SectionBangla, 32),
	text("bang_present_dist", "Present District (Bangla)", SectionBangla, 32),
	text("bang_permanent_vill", "Permanent Village (Bangla)", SectionBangla, 48),
	text("bang_permanent_post", "Permanent Post Office (Bangla)", SectionBangla, 36),
	text("bang_permanent_ps", "Permanent Police Station (Bangla)", SectionBangla, 32),
	text("bang_permanent_dist", "Permanent District (Bangla)", SectionBangla, 32),

	text("ref_contact_name", "Reference Name", SectionReference, 32),
	text("ref_relation", "Reference Relation", SectionReference, 16),
	text("ref_address", "Reference Address", SectionReference, 64),
	text("remarks", "Remarks", SectionReference, 48),

	{Name: FieldPhoto, Label: "Photo", Kind: KindFile, Section: SectionAttachments, Role: RolePhoto},
	{Name: FieldSignature, Label: "Signature", Kind: KindFile, Section: SectionAttachments, Role: RoleSignature},
}

var registryIndex = func() map[string]int {
	idx := make(map[string]int, len(registry))
	for i, f := range registry {
		if _, dup := idx[f.Name]; dup {
			panic("employee: duplicate field " + f.Name)
		}
		idx[f.Name] = i
	}
	return idx
}()

// Fields returns the registry in display order. The slice is a copy.
func Fields() []Field {
	out := make([]Field, len(registry))
	for i, f := range registry {
		out[i] = f.clone()
	}
	return out
}

// Lookup returns the field named name.
func Lookup(name string) (Field, bool) {
	i, ok := registryIndex[strings.TrimSpace(name)]
	if !ok {
		return Field{}, false
	}
	return registry[i].clone(), true
}

// Sections groups the registry by section, preserving first-appearance order.
func Sections() []Section {
	var out []Section
	pos := map[string]int{}
	for _, f := range registry {
		i, ok := pos[f.Section]
		if !ok {
			i = len(out)
			pos[f.Section] = i
			out = append(out, Section{Name: f.Section})
		}
		out[i].Fields = append(out[i].Fields, f.clone())
	}
	return out
}

// HasOption reports whether v is one of the select options.
func (f Field) HasOption(v string) bool {
	return slices.Contains(f.Options, v)
}

func (f Field) clone() Field {
	if f.Options != nil {
		f.Options = append([]string(nil), f.Options...)
	}
	return f
}
