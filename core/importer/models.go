package importer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/darasahq/darasa/core"
	"github.com/darasahq/darasa/core/profile"
)

// Provisioning modes.
type Mode string

const (
	// ModeInvite sends each new identity an email invitation (the default).
	ModeInvite Mode = "invite"
	// ModeCreate provisions unconfirmed identities directly, without email.
	ModeCreate Mode = "create"
)

// TeamMatch selects which row field resolves team membership.
type TeamMatch string

const (
	MatchName TeamMatch = "name" // resolve by team_name (the default)
	MatchID   TeamMatch = "id"   // resolve by team_id
)

// Row statuses.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

var (
	// errors
	ErrNoRows      = errors.New("no rows provided")
	ErrTooManyRows = errors.New("too many rows")
	ErrForbidden   = errors.New("caller is not an owner or admin")
)

type (
	// Request is one import batch. Rows takes precedence over CSV when non-empty.
	Request struct {
		CSV       string                   `json:"csv"`
		Rows      []map[string]interface{} `json:"rows"`
		Mode      Mode                     `json:"mode"`
		TeamMatch TeamMatch                `json:"teamMatch"`
	}

	// ImportRow is the normalized working unit for one provisioning attempt.
	ImportRow struct {
		Email        string
		FirstName    string
		LastName     string
		MobileNumber string
		Role         string
		TeamName     string
		TeamID       string
	}

	// RowResult is the per-row outcome returned to the caller.
	RowResult struct {
		Email        string `json:"email"`
		Status       string `json:"status"`
		Message      string `json:"message"`
		TeamAssigned bool   `json:"team_assigned"`
	}

	// BatchSummary counts row outcomes; Succeeded+Failed always equals Total.
	BatchSummary struct {
		Total     int `json:"total"`
		Succeeded int `json:"succeeded"`
		Failed    int `json:"failed"`
	}

	Report struct {
		Summary BatchSummary `json:"summary"`
		Results []RowResult  `json:"results"`
	}
)

// Clean normalizes the request options, falling back to the defaults
// for absent or unrecognized values.
func (r *Request) Clean() {
	switch Mode(core.CleanString(string(r.Mode), true /* lower */)) {
	case ModeCreate:
		r.Mode = ModeCreate
	default:
		r.Mode = ModeInvite
	}
	switch TeamMatch(core.CleanString(string(r.TeamMatch), true /* lower */)) {
	case MatchID:
		r.TeamMatch = MatchID
	default:
		r.TeamMatch = MatchName
	}
}

// FullName joins the non-empty name parts with a single space.
func (row ImportRow) FullName() string {
	parts := make([]string, 0, 2)
	if row.FirstName != "" {
		parts = append(parts, row.FirstName)
	}
	if row.LastName != "" {
		parts = append(parts, row.LastName)
	}
	return strings.Join(parts, " ")
}

// Accepted header aliases per canonical field, in lookup order.
// Keys are matched after normalizeKey (lower-case, spaces/dashes to underscores).
var headerAliases = map[string][]string{
	"email":         {"email", "e_mail", "email_address"},
	"first_name":    {"first_name", "firstname", "given_name"},
	"last_name":     {"last_name", "lastname", "surname", "family_name"},
	"mobile_number": {"mobile_number", "mobile", "phone", "phone_number"},
	"role":          {"role", "user_role"},
	"team_name":     {"team_name", "team"},
	"team_id":       {"team_id"},
}

func normalizeKey(key string) string {
	key = strings.TrimPrefix(key, "\ufeff") // strip BOM
	key = core.CleanString(key, true /* lower */)
	key = strings.ReplaceAll(key, " ", "_")
	return strings.ReplaceAll(key, "-", "_")
}

// NormalizeRecord maps one loosely-typed input record to an ImportRow:
// keys matched case-insensitively against the accepted aliases, values
// trimmed, unrecognized roles defaulted to learner.
func NormalizeRecord(rec map[string]string) ImportRow {
	normalized := make(map[string]string, len(rec))
	for k, v := range rec {
		k = normalizeKey(k)
		if _, ok := normalized[k]; !ok || normalized[k] == "" {
			normalized[k] = core.CleanString(v)
		}
	}

	lookup := func(field string) string {
		for _, alias := range headerAliases[field] {
			if v := normalized[alias]; v != "" {
				return v
			}
		}
		return ""
	}

	return ImportRow{
		Email:        core.CleanString(lookup("email"), true /* lower */),
		FirstName:    lookup("first_name"),
		LastName:     lookup("last_name"),
		MobileNumber: lookup("mobile_number"),
		Role:         profile.NormalizeRole(lookup("role")),
		TeamName:     lookup("team_name"),
		TeamID:       lookup("team_id"),
	}
}

// coerceRecord flattens a JSON object's scalar values to strings.
func coerceRecord(rec map[string]interface{}) map[string]string {
	out := make(map[string]string, len(rec))
	for k, v := range rec {
		out[k] = coerceValue(v)
	}
	return out
}

func coerceValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64: // JSON number
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
