package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/pharmalytics/drugcost-api/drugparser/entities"
)

func TestNewDataValidator(t *testing.T) {
	validator := NewDataValidator()

	if validator == nil {
		t.Fatal("NewDataValidator returned nil")
	}
}

func TestValidateInput(t *testing.T) {
	validator := NewDataValidator()

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid drug name", "Lipitor", false},
		{"valid with punctuation", "Tylenol-PM 500mg (extra strength)", false},
		{"valid with apostrophe", "Bayer's Aspirin", false},
		{"valid with slash", "Amoxicillin/Clavulanate", false},
		{"valid with percent", "Saline 0.9%", false},
		{"minimum length", "ab", false},
		{"empty input", "", true},
		{"whitespace only", "   ", true},
		{"one character", "a", true},
		{"too long", strings.Repeat("a", 50) + strings.Repeat("b", 51), true},
		{"script tag", "<script>alert(1)</script>", true},
		{"sql injection", "x' or 1=1", true},
		{"sql comment", "drug--name", true},
		{"command injection", "drug; rm", true},
		{"path traversal", "../etc/passwd", true},
		{"template injection", "${jndi:ldap}", true},
		{"invalid characters", "drug<name>", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateInput(tt.input)
			if tt.wantErr && err == nil {
				t.Errorf("ValidateInput(%q) expected error, got nil", tt.input)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ValidateInput(%q) unexpected error: %v", tt.input, err)
			}
		})
	}
}

func TestValidateDrugName(t *testing.T) {
	validator := NewDataValidator()

	normalized, err := validator.ValidateDrugName("  lipitor  ")
	if err != nil {
		t.Fatalf("ValidateDrugName failed: %v", err)
	}
	if normalized != "LIPITOR" {
		t.Errorf("Expected normalized LIPITOR, got %q", normalized)
	}

	if _, err := validator.ValidateDrugName("<script>"); err == nil {
		t.Error("Expected error for dangerous input")
	}
	if _, err := validator.ValidateDrugName(""); err == nil {
		t.Error("Expected error for empty input")
	}
}

func TestValidateRecord(t *testing.T) {
	validator := NewDataValidator()

	valid := entities.DrugRecord{
		DrugName:         "LIPITOR",
		GenericName:      "ATORVASTATIN",
		TherapeuticClass: "Statins",
		PMPMCost:         45,
		MemberCount:      100,
		AvgAge:           61,
	}
	if err := validator.ValidateRecord(&valid); err != nil {
		t.Errorf("Valid record rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*entities.DrugRecord)
	}{
		{"blank name", func(r *entities.DrugRecord) { r.DrugName = "  " }},
		{"empty generic", func(r *entities.DrugRecord) { r.GenericName = "" }},
		{"empty class", func(r *entities.DrugRecord) { r.TherapeuticClass = "" }},
		{"name too long", func(r *entities.DrugRecord) { r.DrugName = strings.Repeat("X", 121) }},
		{"negative pmpm", func(r *entities.DrugRecord) { r.PMPMCost = -1 }},
		{"negative members", func(r *entities.DrugRecord) { r.MemberCount = -5 }},
		{"negative total cost", func(r *entities.DrugRecord) { r.TotalDrugCost = -0.01 }},
		{"negative fills", func(r *entities.DrugRecord) { r.TotalPrescriptionFills = -1 }},
		{"age out of range", func(r *entities.DrugRecord) { r.AvgAge = 121 }},
		{"interactions too long", func(r *entities.DrugRecord) { r.DrugInteractions = strings.Repeat("x", 2001) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := valid
			tt.mutate(&rec)
			if err := validator.ValidateRecord(&rec); err == nil {
				t.Error("Expected validation error, got nil")
			}
		})
	}

	if err := validator.ValidateRecord(nil); err == nil {
		t.Error("Expected error for nil record")
	}
}

func TestValidateAddDrug_CollectsAllFieldErrors(t *testing.T) {
	validator := NewDataValidator()

	negative := -1.0
	req := &entities.AddDrugRequest{
		DrugName:         "",
		GenericName:      "<script>bad",
		TherapeuticClass: "Statins",
		PMPMCost:         &negative,
	}

	err := validator.ValidateAddDrug(req)
	if err == nil {
		t.Fatal("Expected validation error")
	}

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Expected *ValidationError, got %T", err)
	}

	fields := make(map[string]string, len(verr.Fields))
	for _, f := range verr.Fields {
		fields[f.Field] = f.Message
	}

	if len(verr.Fields) != 3 {
		t.Errorf("Expected 3 field errors, got %d: %v", len(verr.Fields), fields)
	}
	if _, ok := fields["drug_name"]; !ok {
		t.Error("Expected drug_name error")
	}
	if _, ok := fields["generic_name"]; !ok {
		t.Error("Expected generic_name error")
	}
	if msg := fields["pmpm_cost"]; msg != "must not be negative" {
		t.Errorf("Expected pmpm_cost negative error, got %q", msg)
	}
}

func TestValidateAddDrug_Valid(t *testing.T) {
	validator := NewDataValidator()

	pmpm := 12.5
	members := 100
	req := &entities.AddDrugRequest{
		DrugName:         "Medrol",
		GenericName:      "methylprednisolone",
		TherapeuticClass: "Corticosteroids",
		PMPMCost:         &pmpm,
		MemberCount:      &members,
	}

	if err := validator.ValidateAddDrug(req); err != nil {
		t.Errorf("Valid request rejected: %v", err)
	}
}

func TestValidateAddDrug_NilRequest(t *testing.T) {
	validator := NewDataValidator()

	err := validator.ValidateAddDrug(nil)
	if err == nil {
		t.Fatal("Expected error for nil request")
	}

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Expected *ValidationError, got %T", err)
	}
	if len(verr.Fields) != 1 || verr.Fields[0].Field != "body" {
		t.Errorf("Expected single body error, got %v", verr.Fields)
	}
}

func TestValidateAddDrug_MissingRequiredOnly(t *testing.T) {
	validator := NewDataValidator()

	err := validator.ValidateAddDrug(&entities.AddDrugRequest{})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Expected *ValidationError, got %v", err)
	}

	// drug_name, generic_name, therapeutic_class, pmpm_cost
	if len(verr.Fields) != 4 {
		t.Errorf("Expected 4 required-field errors, got %d", len(verr.Fields))
	}
}

func TestValidationError_Message(t *testing.T) {
	verr := &ValidationError{}
	if verr.Error() != "validation failed" {
		t.Errorf("Unexpected empty-fields message: %q", verr.Error())
	}

	verr.Add("drug_name", "drug_name is required")
	verr.Add("pmpm_cost", "must not be negative")

	expected := "validation failed: drug_name: drug_name is required; pmpm_cost: must not be negative"
	if verr.Error() != expected {
		t.Errorf("Expected %q, got %q", expected, verr.Error())
	}
}

func TestAddDrugRequest_ToRecord(t *testing.T) {
	pmpm := 12.5
	req := &entities.AddDrugRequest{
		NDC:              " 00009-0056-02 ",
		DrugName:         "  medrol ",
		GenericName:      "methylprednisolone",
		TherapeuticClass: " Corticosteroids ",
		TECode:           "ab",
		PMPMCost:         &pmpm,
		State:            "mi",
	}

	rec := req.ToRecord()

	if rec.DrugName != "MEDROL" {
		t.Errorf("Expected MEDROL, got %q", rec.DrugName)
	}
	if rec.GenericName != "METHYLPREDNISOLONE" {
		t.Errorf("Expected METHYLPREDNISOLONE, got %q", rec.GenericName)
	}
	if rec.TherapeuticClass != "Corticosteroids" {
		t.Errorf("Expected trimmed class, got %q", rec.TherapeuticClass)
	}
	if rec.TECode != "AB" {
		t.Errorf("Expected AB, got %q", rec.TECode)
	}
	if rec.NDC != "00009-0056-02" {
		t.Errorf("Expected trimmed NDC, got %q", rec.NDC)
	}
	if rec.State != "MI" {
		t.Errorf("Expected MI, got %q", rec.State)
	}
	if rec.PMPMCost != 12.5 {
		t.Errorf("Expected PMPM 12.5, got %v", rec.PMPMCost)
	}

	// Defaults for omitted fields match the CSV loader
	if rec.DrugInteractions != entities.NoInteractionData {
		t.Errorf("Expected interactions default, got %q", rec.DrugInteractions)
	}
	if rec.ClinicalEfficacy != entities.NoEfficacyData {
		t.Errorf("Expected efficacy default, got %q", rec.ClinicalEfficacy)
	}
	if rec.MemberCount != 0 {
		t.Errorf("Expected zero member count, got %d", rec.MemberCount)
	}
}

func TestAddDrugRequest_ToRecord_TECodeDefault(t *testing.T) {
	pmpm := 1.0
	req := &entities.AddDrugRequest{
		DrugName:         "Drug",
		GenericName:      "generic",
		TherapeuticClass: "Class",
		PMPMCost:         &pmpm,
	}

	rec := req.ToRecord()
	if rec.TECode != entities.NoTECode {
		t.Errorf("Expected TE code default %q, got %q", entities.NoTECode, rec.TECode)
	}
}

func TestValidateDataIntegrity(t *testing.T) {
	validator := NewDataValidator()

	if err := validator.ValidateDataIntegrity(nil); err == nil {
		t.Error("Expected error for empty dataset")
	}

	records := []entities.DrugRecord{
		{DrugName: "A-DRUG", GenericName: "a-gen", TherapeuticClass: "Class", PMPMCost: 1},
		{DrugName: "B-DRUG", GenericName: "b-gen", TherapeuticClass: "Class", PMPMCost: -1},
	}
	err := validator.ValidateDataIntegrity(records)
	if err == nil {
		t.Fatal("Expected error for invalid record")
	}
	if !strings.Contains(err.Error(), "invalid record 1") {
		t.Errorf("Expected error to name record 1, got %q", err.Error())
	}

	records[1].PMPMCost = 2
	if err := validator.ValidateDataIntegrity(records); err != nil {
		t.Errorf("Valid dataset rejected: %v", err)
	}
}
