package volprofile

import (
	"github.com/tidwall/gjson"
)

// Format 标识结果文件的结构版本。
type Format int

const (
	FormatUnrecognized Format = iota
	FormatLegacy
	FormatNew
)

func (f Format) String() string {
	switch f {
	case FormatNew:
		return "new"
	case FormatLegacy:
		return "legacy"
	default:
		return "unrecognized"
	}
}

// present treats JSON null the same as a missing key.
func present(r gjson.Result) bool {
	return r.Exists() && r.Type != gjson.Null
}

func isNewShape(doc gjson.Result) bool {
	results := doc.Get("results")
	if !results.IsArray() {
		return false
	}
	first := results.Get("0")
	if !present(first) {
		return false
	}
	return present(first.Get("strategy_position_output")) && present(first.Get("symbol_analysis_output"))
}

// DetectFormat classifies raw as FormatNew or FormatLegacy. It is total:
// anything that is not the nested shape, invalid JSON included, is legacy.
func DetectFormat(raw []byte) Format {
	if !gjson.ValidBytes(raw) {
		return FormatLegacy
	}
	if isNewShape(gjson.ParseBytes(raw)) {
		return FormatNew
	}
	return FormatLegacy
}

// ClassifyFormat 三分类：新版、旧版或无法识别。
func ClassifyFormat(raw []byte) Format {
	if !gjson.ValidBytes(raw) {
		return FormatUnrecognized
	}
	doc := gjson.ParseBytes(raw)
	if !doc.IsObject() {
		return FormatUnrecognized
	}
	if isNewShape(doc) {
		return FormatNew
	}
	results := doc.Get("results")
	if !results.IsArray() {
		return FormatUnrecognized
	}
	first := results.Get("0")
	if !first.Exists() {
		return FormatLegacy
	}
	if !first.IsObject() {
		return FormatUnrecognized
	}
	if present(first.Get("symbol")) && first.Get("conclusion").Exists() &&
		!first.Get("strategy_position_output").Exists() && !first.Get("symbol_analysis_output").Exists() {
		return FormatLegacy
	}
	return FormatUnrecognized
}
