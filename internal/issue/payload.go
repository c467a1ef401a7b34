package issue

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"blueprints/internal/services"
)

// Submission is a decoded submission payload.
type Submission struct {
	Fields Fields
	// Number is the issue number, or 0 when the payload did not carry one.
	Number int
	// Author is the issue author login, if known.
	Author string
	// AuthorIconURL is the issue author avatar, if known.
	AuthorIconURL string
	// Structured is true when the payload bypassed markdown extraction.
	Structured bool
}

type issueUser struct {
	Login     string `json:"login"`
	AvatarURL string `json:"avatar_url"`
}

type issueObject struct {
	Number int        `json:"number"`
	Body   *string    `json:"body"`
	User   *issueUser `json:"user"`
}

type structuredRecord struct {
	SeriesName  string          `json:"series_name"`
	SeriesYear  json.RawMessage `json:"series_year"`
	Creator     string          `json:"creator"`
	Description json.RawMessage `json:"description"`
	Blueprint   json.RawMessage `json:"blueprint"`
	PreviewURL  string          `json:"preview_url"`
	Files       []string        `json:"files"`
}

// DecodePayload accepts a JSON string holding the issue body, an issue event
// object (optionally nested under "issue"), a pre-structured record, or a raw
// markdown body.
func DecodePayload(data []byte, fallbackCreator string) (*Submission, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, malformed("payload is empty", nil)
	}

	switch trimmed[0] {
	case '"':
		var body string
		if err := json.Unmarshal(trimmed, &body); err != nil {
			return nil, malformed("decode issue body string", err)
		}
		return fromBody(body, fallbackCreator, nil)
	case '{':
		return decodeObject(trimmed, fallbackCreator)
	default:
		return fromBody(string(data), fallbackCreator, nil)
	}
}

func decodeObject(data []byte, fallbackCreator string) (*Submission, error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return nil, malformed("decode payload object", err)
	}
	if nested, ok := keys["issue"]; ok {
		return decodeObject(nested, fallbackCreator)
	}
	if _, ok := keys["series_name"]; ok {
		return decodeStructured(data, fallbackCreator)
	}
	if _, ok := keys["body"]; ok {
		var obj issueObject
		if err := json.Unmarshal(data, &obj); err != nil {
			return nil, malformed("decode issue object", err)
		}
		if obj.Body == nil {
			return nil, malformed("issue body is null", nil)
		}
		return fromBody(*obj.Body, fallbackCreator, &obj)
	}
	return nil, malformed("payload object has neither body nor series_name", nil)
}

func fromBody(body, fallbackCreator string, obj *issueObject) (*Submission, error) {
	sub := &Submission{}
	if obj != nil {
		sub.Number = obj.Number
		if obj.User != nil {
			sub.Author = strings.TrimSpace(obj.User.Login)
			sub.AuthorIconURL = strings.TrimSpace(obj.User.AvatarURL)
		}
	}
	if sub.Author != "" {
		fallbackCreator = sub.Author
	}
	fields, err := Extract(body, fallbackCreator)
	if err != nil {
		return nil, err
	}
	sub.Fields = fields
	return sub, nil
}

func decodeStructured(data []byte, fallbackCreator string) (*Submission, error) {
	var rec structuredRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, malformed("decode structured record", err)
	}

	fields := Fields{
		SeriesName: strings.TrimSpace(rec.SeriesName),
		Creator:    strings.TrimSpace(rec.Creator),
		PreviewURL: strings.TrimSpace(rec.PreviewURL),
	}
	if fields.SeriesName == "" {
		return nil, &SectionError{Section: "Series Name", Reason: "series_name is empty"}
	}

	year, err := decodeYear(rec.SeriesYear)
	if err != nil {
		return nil, err
	}
	fields.SeriesYear = year

	if fields.Creator == "" || strings.Contains(fields.Creator, NoResponse) {
		fields.Creator = strings.TrimSpace(fallbackCreator)
	}

	description, err := decodeDescription(rec.Description)
	if err != nil {
		return nil, err
	}
	fields.Description = description

	blueprintJSON, err := decodeBlueprint(rec.Blueprint)
	if err != nil {
		return nil, err
	}
	fields.BlueprintJSON = blueprintJSON

	if fields.PreviewURL == "" {
		return nil, &SectionError{Section: "Preview Title Card", Reason: "preview_url is empty"}
	}
	for _, file := range rec.Files {
		if file = strings.TrimSpace(file); file != "" {
			fields.FileURLs = append(fields.FileURLs, file)
		}
	}

	return &Submission{Fields: fields, Structured: true}, nil
}

func decodeYear(raw json.RawMessage) (int, error) {
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		var number int
		if err := json.Unmarshal(raw, &number); err != nil {
			return 0, &SectionError{Section: "Series Year", Reason: "series_year must be a number or numeric string"}
		}
		text = strconv.Itoa(number)
	}
	return parseYear(text)
}

func decodeDescription(raw json.RawMessage) (string, error) {
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text, nil
	}
	var lines []string
	if err := json.Unmarshal(raw, &lines); err == nil {
		return strings.Join(lines, "\n"), nil
	}
	return "", &SectionError{Section: "Blueprint Description", Reason: "description must be a string or list of strings"}
}

func decodeBlueprint(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", &SectionError{Section: "Blueprint", Reason: "blueprint is missing"}
	}
	if raw[0] == '"' {
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return "", &SectionError{Section: "Blueprint", Reason: err.Error()}
		}
		return strings.TrimSpace(text), nil
	}
	return string(raw), nil
}

func malformed(message string, err error) error {
	return services.Wrap(services.ErrMalformedInput, "issue", "decode payload", message, err)
}
