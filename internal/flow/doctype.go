package flow

import "strings"

// DocumentClass identifies what kind of document a submission is.
type DocumentClass string

const (
	// ClassUnclassified marks a fresh submission nobody has classified yet.
	ClassUnclassified DocumentClass = "unclassified"
	// ClassRequested marks a submission the user has been asked to classify
	// but has not answered for. It keeps the scheduler from re-prompting.
	ClassRequested DocumentClass = "classification_requested"

	ClassPassport   DocumentClass = "passport"
	ClassWorkBook   DocumentClass = "work_book"
	ClassDiploma    DocumentClass = "diploma"
	ClassINN        DocumentClass = "inn"
	ClassSNILS      DocumentClass = "snils"
	ClassForm182    DocumentClass = "form_182"
	ClassCardData   DocumentClass = "card_data"
	ClassMilitaryID DocumentClass = "military_id"
)

type classInfo struct {
	label     string
	folder    string
	mandatory bool
}

var realClasses = map[DocumentClass]classInfo{
	ClassPassport:   {label: "Passport", folder: "passport", mandatory: true},
	ClassWorkBook:   {label: "Work book", folder: "employment", mandatory: false},
	ClassDiploma:    {label: "Diploma", folder: "diploma", mandatory: false},
	ClassINN:        {label: "INN", folder: "inn", mandatory: true},
	ClassSNILS:      {label: "SNILS", folder: "snils", mandatory: true},
	ClassForm182:    {label: "Form 182", folder: "form_182", mandatory: false},
	ClassCardData:   {label: "Bank card data", folder: "bankdata", mandatory: false},
	ClassMilitaryID: {label: "Military ID", folder: "military_id", mandatory: false},
}

// realClassOrder fixes the presentation order of classification choices.
var realClassOrder = []DocumentClass{
	ClassPassport,
	ClassWorkBook,
	ClassDiploma,
	ClassINN,
	ClassSNILS,
	ClassForm182,
	ClassCardData,
	ClassMilitaryID,
}

// RealClasses returns the ordered closed set of real document classes.
func RealClasses() []DocumentClass {
	cp := make([]DocumentClass, len(realClassOrder))
	copy(cp, realClassOrder)
	return cp
}

// MandatoryClasses returns the classes that must be present before the flow
// can reach StateMandatorySatisfied.
func MandatoryClasses() []DocumentClass {
	var out []DocumentClass
	for _, class := range realClassOrder {
		if realClasses[class].mandatory {
			out = append(out, class)
		}
	}
	return out
}

// ParseClass converts a string into a known DocumentClass.
func ParseClass(value string) (DocumentClass, bool) {
	normalized := DocumentClass(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	if normalized == ClassUnclassified || normalized == ClassRequested {
		return normalized, true
	}
	if _, ok := realClasses[normalized]; ok {
		return normalized, true
	}
	return "", false
}

// IsReal reports whether the class is one of the closed real categories
// rather than a sentinel.
func (c DocumentClass) IsReal() bool {
	_, ok := realClasses[c]
	return ok
}

// IsPending reports whether the class still needs a classification answer.
func (c DocumentClass) IsPending() bool {
	return c == ClassUnclassified || c == ClassRequested
}

// Mandatory reports whether the class is required for mandatory coverage.
func (c DocumentClass) Mandatory() bool {
	return realClasses[c].mandatory
}

// Label returns the user-facing button text for the class.
func (c DocumentClass) Label() string {
	if info, ok := realClasses[c]; ok {
		return info.label
	}
	return string(c)
}

// Folder returns the storage subfolder a classified document is moved into.
func (c DocumentClass) Folder() string {
	if info, ok := realClasses[c]; ok {
		return info.folder
	}
	return string(c)
}
