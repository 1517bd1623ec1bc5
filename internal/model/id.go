package model

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

type IDType string

const (
	IDTypeLead     IDType = "lead"
	IDTypeProposal IDType = "prop"
	IDTypeFeedback IDType = "fb"
	IDTypeRun      IDType = "run"
	IDTypeMemory   IDType = "mem"
)

var validIDTypes = map[IDType]bool{
	IDTypeLead:     true,
	IDTypeProposal: true,
	IDTypeFeedback: true,
	IDTypeRun:      true,
	IDTypeMemory:   true,
}

var idRegex = regexp.MustCompile(`^(lead|prop|fb|run|mem)_[0-9a-f]{32}$`)

// NewID generates a typed identifier like "lead_1f0c...".
func NewID(idType IDType) (string, error) {
	if !validIDTypes[idType] {
		return "", fmt.Errorf("invalid ID type: %s", idType)
	}
	u := uuid.New()
	return fmt.Sprintf("%s_%s", idType, strings.ReplaceAll(u.String(), "-", "")), nil
}

func ValidateID(id string) bool {
	return idRegex.MatchString(id)
}

func ParseIDType(id string) (IDType, error) {
	if !ValidateID(id) {
		return "", fmt.Errorf("invalid ID format: %s", id)
	}
	match := idRegex.FindStringSubmatch(id)
	return IDType(match[1]), nil
}
