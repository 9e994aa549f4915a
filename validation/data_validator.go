// Package validation provides data validation functionality for the drug
// cost API.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pharmalytics/drugcost-api/drugparser/entities"
	"github.com/pharmalytics/drugcost-api/interfaces"
	"github.com/pharmalytics/drugcost-api/logging"
)

// Pre-compiled regex patterns for performance optimization
// Compiled once at package initialization and reused for all validations
var (
	// Input validation: alphanumeric + the punctuation drug labels carry
	inputRegex = regexp.MustCompile(`^[a-zA-Z0-9\s\-\.\+'/(),%]+$`)

	// Dangerous patterns as strings (faster than regex for simple substring matching)
	// strings.Contains is 5-10x faster than regex for these patterns
	dangerousPatterns = []string{
		"<script", "</script>", "javascript:", "vbscript:", "onload=", "onerror=",
		"onclick=", "onmouseover=", "onfocus=", "onblur=", "onchange=", "onsubmit=",
		"eval(", "expression(", "url(", "import ", "@import", "binding(", "behavior(",
		// SQL injection patterns
		"' or ", "\" or ", "union select", "drop table", "delete from", "insert into",
		"update set", "--", "/*", "*/", "xp_", "sp_", "exec(", "execute(",
		// Command injection patterns
		"; ", "| ", "& ", "`", "$(", "${",
		// Path traversal patterns
		"../", "..\\", "%2e%2e", "file://",
		// LDAP injection patterns
		"*)(", "*|(", "*)%",
		// NoSQL injection patterns
		"{$ne:", "{$gt:", "{$where:", "{$or:", "{$regex:", "{$expr:",
	}
)

// Field length limits for stored records.
const (
	maxNameLength  = 120
	maxClassLength = 100
	maxTextLength  = 2000
	maxAge         = 120
)

// DataValidatorImpl implements the interfaces.DataValidator interface
type DataValidatorImpl struct{}

// NewDataValidator creates a new data validator
func NewDataValidator() interfaces.DataValidator {
	return &DataValidatorImpl{}
}

// ValidateRecord checks the invariants every stored record must hold
func (v *DataValidatorImpl) ValidateRecord(rec *entities.DrugRecord) error {
	if rec == nil {
		return fmt.Errorf("record is nil")
	}

	if strings.TrimSpace(rec.DrugName) == "" {
		return fmt.Errorf("empty drug name")
	}
	if len(rec.DrugName) > maxNameLength {
		return fmt.Errorf("drug name too long for %q: %d characters", rec.DrugName[:maxNameLength], len(rec.DrugName))
	}

	if strings.TrimSpace(rec.GenericName) == "" {
		return fmt.Errorf("empty generic name for %q", rec.DrugName)
	}
	if len(rec.GenericName) > maxNameLength {
		return fmt.Errorf("generic name too long for %q: %d characters", rec.DrugName, len(rec.GenericName))
	}

	if strings.TrimSpace(rec.TherapeuticClass) == "" {
		return fmt.Errorf("empty therapeutic class for %q", rec.DrugName)
	}
	if len(rec.TherapeuticClass) > maxClassLength {
		return fmt.Errorf("therapeutic class too long for %q: %d characters", rec.DrugName, len(rec.TherapeuticClass))
	}

	if rec.PMPMCost < 0 {
		return fmt.Errorf("negative PMPM cost for %q: %f", rec.DrugName, rec.PMPMCost)
	}
	if rec.MemberCount < 0 {
		return fmt.Errorf("negative member count for %q: %d", rec.DrugName, rec.MemberCount)
	}
	if rec.TotalDrugCost < 0 {
		return fmt.Errorf("negative total drug cost for %q: %f", rec.DrugName, rec.TotalDrugCost)
	}
	if rec.TotalPrescriptionFills < 0 {
		return fmt.Errorf("negative prescription fills for %q: %d", rec.DrugName, rec.TotalPrescriptionFills)
	}
	if rec.AvgAge < 0 || rec.AvgAge > maxAge {
		return fmt.Errorf("average age out of range for %q: %f", rec.DrugName, rec.AvgAge)
	}

	if len(rec.DrugInteractions) > maxTextLength {
		return fmt.Errorf("interactions text too long for %q: %d characters", rec.DrugName, len(rec.DrugInteractions))
	}
	if len(rec.ClinicalEfficacy) > maxTextLength {
		return fmt.Errorf("efficacy text too long for %q: %d characters", rec.DrugName, len(rec.ClinicalEfficacy))
	}

	return nil
}

// ValidateAddDrug checks a catalog append payload. Problems are collected
// into one *ValidationError so clients can fix a submission in a single
// round trip.
func (v *DataValidatorImpl) ValidateAddDrug(req *entities.AddDrugRequest) error {
	if req == nil {
		return &ValidationError{Fields: []FieldError{{Field: "body", Message: "request body is required"}}}
	}

	var verr ValidationError

	name := strings.TrimSpace(req.DrugName)
	switch {
	case name == "":
		verr.Add("drug_name", "drug_name is required")
	case len(name) > maxNameLength:
		verr.Add("drug_name", fmt.Sprintf("must be at most %d characters", maxNameLength))
	case v.checkNameText(name) != nil:
		verr.Add("drug_name", v.checkNameText(name).Error())
	}

	generic := strings.TrimSpace(req.GenericName)
	switch {
	case generic == "":
		verr.Add("generic_name", "generic_name is required")
	case len(generic) > maxNameLength:
		verr.Add("generic_name", fmt.Sprintf("must be at most %d characters", maxNameLength))
	case v.checkNameText(generic) != nil:
		verr.Add("generic_name", v.checkNameText(generic).Error())
	}

	class := strings.TrimSpace(req.TherapeuticClass)
	switch {
	case class == "":
		verr.Add("therapeutic_class", "therapeutic_class is required")
	case len(class) > maxClassLength:
		verr.Add("therapeutic_class", fmt.Sprintf("must be at most %d characters", maxClassLength))
	}

	switch {
	case req.PMPMCost == nil:
		verr.Add("pmpm_cost", "pmpm_cost is required")
	case *req.PMPMCost < 0:
		verr.Add("pmpm_cost", "must not be negative")
	}

	if req.MemberCount != nil && *req.MemberCount < 0 {
		verr.Add("member_count", "must not be negative")
	}
	if req.TotalDrugCost != nil && *req.TotalDrugCost < 0 {
		verr.Add("total_drug_cost", "must not be negative")
	}
	if req.TotalPrescriptionFills != nil && *req.TotalPrescriptionFills < 0 {
		verr.Add("total_prescription_fills", "must not be negative")
	}
	if req.AvgAge != nil && (*req.AvgAge < 0 || *req.AvgAge > maxAge) {
		verr.Add("avg_age", fmt.Sprintf("must be between 0 and %d", maxAge))
	}

	if len(req.DrugInteractions) > maxTextLength {
		verr.Add("drug_interactions", fmt.Sprintf("must be at most %d characters", maxTextLength))
	}
	if len(req.ClinicalEfficacy) > maxTextLength {
		verr.Add("clinical_efficacy", fmt.Sprintf("must be at most %d characters", maxTextLength))
	}

	if len(verr.Fields) > 0 {
		return &verr
	}
	return nil
}

// ValidateDataIntegrity performs comprehensive dataset validation
func (v *DataValidatorImpl) ValidateDataIntegrity(records []entities.DrugRecord) error {
	if len(records) == 0 {
		return fmt.Errorf("no drug records found")
	}

	for i := range records {
		if err := v.ValidateRecord(&records[i]); err != nil {
			return fmt.Errorf("invalid record %d: %w", i, err)
		}
	}

	return nil
}

// ReportDataQuality generates a data quality report with all issues found.
// Duplicate names are expected (one row per state) and not reported.
func (v *DataValidatorImpl) ReportDataQuality(records []entities.DrugRecord,
	history map[string][]entities.SpendingPoint) *interfaces.DataQualityReport {

	report := &interfaces.DataQualityReport{
		DuplicateNDCs: []string{},
	}

	ndcSeen := make(map[string]bool)
	namesWithHistory := make(map[string]bool)

	for _, rec := range records {
		if rec.NDC == "" {
			report.RecordsWithoutNDC++
		} else {
			if ndcSeen[rec.NDC] && len(report.DuplicateNDCs) < 10 {
				report.DuplicateNDCs = append(report.DuplicateNDCs, rec.NDC)
			}
			ndcSeen[rec.NDC] = true
		}

		if rec.TECode == entities.NoTECode {
			report.RecordsWithoutTECode++
		}
		if rec.DrugInteractions == entities.NoInteractionData {
			report.RecordsWithoutInteractions++
		}
		if rec.ClinicalEfficacy == entities.NoEfficacyData {
			report.RecordsWithoutEfficacy++
		}
		if rec.State == "" {
			report.RecordsWithoutState++
		}

		key := entities.NormalizeName(rec.DrugName)
		if namesWithHistory[key] {
			continue
		}
		if _, ok := history[key]; ok {
			namesWithHistory[key] = true
		}
	}

	uniqueNames := make(map[string]bool)
	for _, rec := range records {
		uniqueNames[entities.NormalizeName(rec.DrugName)] = true
	}
	for name := range uniqueNames {
		if !namesWithHistory[name] {
			report.DrugsWithoutHistory++
		}
	}

	if report.RecordsWithoutTECode > 0 || report.RecordsWithoutInteractions > 0 {
		logging.Debug("Data quality report generated",
			"records_without_te_code", report.RecordsWithoutTECode,
			"records_without_interactions", report.RecordsWithoutInteractions,
			"records_without_efficacy", report.RecordsWithoutEfficacy,
			"drugs_without_history", report.DrugsWithoutHistory)
	}

	return report
}

// ValidateInput validates user input strings with enhanced security
func (v *DataValidatorImpl) ValidateInput(input string) error {
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("input cannot be empty")
	}

	if len(input) < 2 {
		return fmt.Errorf("input too short: minimum 2 characters")
	}

	if len(input) > 100 {
		return fmt.Errorf("input too long: maximum 100 characters")
	}

	// Word count validation to prevent DoS attacks with many short words
	words := strings.Fields(input)
	if len(words) > 8 {
		return fmt.Errorf("search query too complex: maximum 8 words allowed")
	}

	// Check for potentially dangerous patterns using string matching (5-10x faster than regex)
	lowerInput := strings.ToLower(input)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(lowerInput, pattern) {
			return fmt.Errorf("input contains potentially dangerous content")
		}
	}

	// Allow only alphanumeric characters, spaces, and the punctuation found
	// on drug labels (hyphens, apostrophes, periods, slashes, parentheses,
	// plus and percent signs)
	if !inputRegex.MatchString(input) {
		return fmt.Errorf("input contains invalid characters. Only letters, numbers, spaces and common drug label punctuation are allowed")
	}

	// Additional checks for repeated characters (potential DoS)
	if v.hasExcessiveRepetition(input) {
		return fmt.Errorf("input contains excessive character repetition")
	}

	return nil
}

// ValidateDrugName validates a drug name and returns its normalized
// (upper-cased, trimmed) form for catalog lookups.
func (v *DataValidatorImpl) ValidateDrugName(input string) (string, error) {
	if err := v.ValidateInput(input); err != nil {
		return "", err
	}
	return entities.NormalizeName(input), nil
}

// checkNameText runs the security checks without the search-oriented word
// count limit, for names arriving in JSON payloads.
func (v *DataValidatorImpl) checkNameText(input string) error {
	lowerInput := strings.ToLower(input)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(lowerInput, pattern) {
			return fmt.Errorf("contains potentially dangerous content")
		}
	}
	if !inputRegex.MatchString(input) {
		return fmt.Errorf("contains invalid characters")
	}
	if v.hasExcessiveRepetition(input) {
		return fmt.Errorf("contains excessive character repetition")
	}
	return nil
}

// hasExcessiveRepetition checks for potential DoS patterns with excessive character repetition
func (v *DataValidatorImpl) hasExcessiveRepetition(input string) bool {
	// Check for the same character repeated more than 10 times consecutively
	for i := 0; i < len(input)-10; i++ {
		allSame := true
		for j := 1; j <= 10; j++ {
			if input[i] != input[i+j] {
				allSame = false
				break
			}
		}
		if allSame {
			return true
		}
	}
	return false
}
