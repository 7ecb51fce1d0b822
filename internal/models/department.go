// internal/models/department.go
package models

import "strings"

type Department string

const (
	DepartmentIT    Department = "IT"
	DepartmentCE    Department = "CE"
	DepartmentCSE   Department = "CSE"
	DepartmentME    Department = "ME"
	DepartmentCIVIL Department = "CIVIL"
	DepartmentEE    Department = "EE"
	DepartmentEC    Department = "EC"
	DepartmentAIML  Department = "AIML"
)

var Departments = []Department{
	DepartmentIT, DepartmentCE, DepartmentCSE, DepartmentME,
	DepartmentCIVIL, DepartmentEE, DepartmentEC, DepartmentAIML,
}

var departmentAliases = map[string]Department{
	"CS":          DepartmentCSE,
	"COMP":        DepartmentCSE,
	"COMPUTER":    DepartmentCSE,
	"CSIT":        DepartmentCSE,
	"MECH":        DepartmentME,
	"MECHANICAL":  DepartmentME,
	"ELECTRICAL":  DepartmentEE,
	"E&EE":        DepartmentEE,
	"ELECTRONICS": DepartmentEC,
	"ECE":         DepartmentEC,
	"E&CE":        DepartmentEC,
	"CIV":         DepartmentCIVIL,
	"AI":          DepartmentAIML,
	"ML":          DepartmentAIML,
	"AI&ML":       DepartmentAIML,
	"AI-ML":       DepartmentAIML,
}

// NormalizeDepartment maps free-form department input onto the fixed code set.
func NormalizeDepartment(raw string) (Department, bool) {
	code := strings.ToUpper(strings.TrimSpace(raw))
	if code == "" {
		return "", false
	}
	for _, d := range Departments {
		if string(d) == code {
			return d, true
		}
	}
	if d, ok := departmentAliases[code]; ok {
		return d, true
	}
	return "", false
}
