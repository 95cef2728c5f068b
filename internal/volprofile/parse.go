package volprofile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ParseVisualizationData validates raw against the nested result schema and
// decodes it. Validation failures come back as *SchemaError.
func ParseVisualizationData(raw []byte) (*VisualizationData, error) {
	inst, err := decodeInstance(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}
	schema, err := visualizationSchema()
	if err != nil {
		return nil, fmt.Errorf("compile visualization schema: %w", err)
	}
	if err := schema.Validate(inst); err != nil {
		return nil, schemaErrorFrom(err)
	}
	var data VisualizationData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, &SchemaError{Reason: err.Error()}
	}
	if err := checkRangeBounds(data.Results); err != nil {
		return nil, err
	}
	return &data, nil
}

// decodeInstance 解码为 jsonschema 可校验的通用值；数字保留为 json.Number。
func decodeInstance(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var inst any
	if err := dec.Decode(&inst); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("trailing data after top-level value")
	}
	return inst, nil
}

// ParseStockData 解码旧版扁平结果，不改动任何取值。
func ParseStockData(raw []byte) (*StockData, error) {
	if !json.Valid(raw) {
		return nil, ErrMalformedJSON
	}
	var data StockData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, &SchemaError{Reason: fmt.Sprintf("decode legacy result: %v", err)}
	}
	return &data, nil
}

func checkRangeBounds(results []SelectionOutput) error {
	for i, res := range results {
		base := fmt.Sprintf("/results/%d/symbol_analysis_output", i)
		analysis := res.SymbolAnalysisOutput
		if err := checkRange(base+"/lower_stack_range", analysis.LowerStackRange); err != nil {
			return err
		}
		if err := checkRange(base+"/upper_stack_range", analysis.UpperStackRange); err != nil {
			return err
		}
		for j := range analysis.StackRanges {
			if err := checkRange(fmt.Sprintf("%s/stack_ranges/%d", base, j), &analysis.StackRanges[j]); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkRange(path string, r *StackRange) error {
	if r == nil || r.LowerPrice <= r.UpperPrice {
		return nil
	}
	return &SchemaError{
		Path:   path,
		Reason: fmt.Sprintf("lower_price %v exceeds upper_price %v", r.LowerPrice, r.UpperPrice),
	}
}
