package verdict

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Decode records which branch of the parser produced a result's code.
type Decode int

const (
	// DecodeEmpty marks an empty body.
	DecodeEmpty Decode = iota
	// DecodeReported marks a structured body with an integer result_code, used verbatim.
	DecodeReported
	// DecodeDerived marks a structured body whose code came from classifying the whole body.
	DecodeDerived
	// DecodeText marks a body that was not JSON and was classified as plain text.
	DecodeText
	// DecodeUnexpected marks a body that decoded as JSON but not as an object.
	DecodeUnexpected
)

// String returns the decode branch name used in hooks and logs.
func (d Decode) String() string {
	switch d {
	case DecodeEmpty:
		return "empty"
	case DecodeReported:
		return "reported"
	case DecodeDerived:
		return "derived"
	case DecodeText:
		return "text"
	case DecodeUnexpected:
		return "unexpected"
	default:
		return "unknown"
	}
}

// Verdict is the structured reply the remote service is asked to return.
// The contract is best-effort; Parse tolerates any deviation from it.
type Verdict struct {
	Prompt     string `json:"prompt" desc:"The evaluated input"`
	Result     any    `json:"result" desc:"The answer, or {\"error\": \"jailbreak prompt\"}"`
	ResultCode int    `json:"result_code" desc:"Outcome code: 0, 200, 300 or 391"`
}

// decoded is the outcome of structured decoding. hasCode is false when result_code
// is absent or not an integer, in which case the code must be derived.
type decoded struct {
	value   any
	code    OutcomeCode
	hasCode bool
}

// Parse decodes a raw reply into a value and an outcome code.
// It never fails: every body maps to exactly one ParsedResult.
func Parse(body string) ParsedResult {
	if body == "" {
		return ParsedResult{Code: CodeRefusal, Decode: DecodeEmpty}
	}

	var probe any
	if err := json.Unmarshal([]byte(body), &probe); err != nil {
		return ParsedResult{Value: body, Code: Classify(body), Decode: DecodeText}
	}

	d, ok := decodeObject(body)
	if !ok {
		return ParsedResult{Code: CodeRefusal, Decode: DecodeUnexpected}
	}
	if d.hasCode {
		return ParsedResult{Value: d.value, Code: d.code, Decode: DecodeReported}
	}
	return ParsedResult{Value: d.value, Code: Classify(body), Decode: DecodeDerived}
}

// decodeObject extracts result and result_code from a JSON object body.
// It reports false when the body is valid JSON but not an object.
func decodeObject(body string) (decoded, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &fields); err != nil || fields == nil {
		return decoded{}, false
	}

	var d decoded
	if raw, ok := fields["result"]; ok {
		if err := json.Unmarshal(raw, &d.value); err != nil {
			return decoded{}, false
		}
	}
	if raw, ok := fields["result_code"]; ok {
		d.code, d.hasCode = integerCode(raw)
	}
	return d, true
}

// integerCode accepts only JSON integer literals; floats, strings, bools and null are rejected.
func integerCode(raw json.RawMessage) (OutcomeCode, bool) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return 0, false
	}
	num, ok := v.(json.Number)
	if !ok || strings.ContainsAny(num.String(), ".eE") {
		return 0, false
	}
	n, err := num.Int64()
	if err != nil {
		return 0, false
	}
	return OutcomeCode(n), true
}
