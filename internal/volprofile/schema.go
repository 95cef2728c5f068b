package volprofile

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaURL = "visualization.schema.json"

func numberSchema() map[string]any { return map[string]any{"type": "number"} }

func nonNegative() map[string]any { return map[string]any{"type": "number", "minimum": 0} }

func nullableNumber() map[string]any { return map[string]any{"type": []any{"number", "null"}} }

func objectOf(required []string, props map[string]any) map[string]any {
	return map[string]any{
		"type":       "object",
		"required":   required,
		"properties": props,
	}
}

func conclusionPattern() string {
	tokens := make([]string, 0, len(allConclusions))
	for _, c := range allConclusions {
		tokens = append(tokens, regexp.QuoteMeta(string(c)))
	}
	return `^(?:[A-Za-z0-9_]+\.)?(?:` + strings.Join(tokens, "|") + `)$`
}

// visualizationSchemaDoc 描述规范化所依赖的嵌套字段。
func visualizationSchemaDoc() map[string]any {
	stackRange := objectOf([]string{"lower_price", "upper_price"}, map[string]any{
		"lower_price":       numberSchema(),
		"upper_price":       numberSchema(),
		"total_volume":      nonNegative(),
		"volume_percentage": map[string]any{"type": "number", "minimum": 0, "maximum": 1},
		"average_volume":    nonNegative(),
		"price_levels":      map[string]any{"type": "integer", "minimum": 0},
		"volume_density":    nonNegative(),
	})
	nullableRange := map[string]any{
		"oneOf": []any{
			map[string]any{"type": "null"},
			map[string]any{"$ref": "#/$defs/stack_range"},
		},
	}
	decision := objectOf([]string{"analysis_conclusion"}, map[string]any{
		"current_epoch":       map[string]any{"type": "integer"},
		"analysis_conclusion": map[string]any{"type": "string", "pattern": conclusionPattern()},
		"intent": map[string]any{
			"type":    []any{"string", "null"},
			"pattern": `^(?:[A-Za-z0-9_]+\.)?(?:BUY_TO_OPEN|SELL_TO_OPEN|BUY_TO_CLOSE|SELL_TO_CLOSE)$`,
		},
		"quantity":                     nullableNumber(),
		"price":                        nullableNumber(),
		"gain_loss_ratio":              nullableNumber(),
		"expected_max_loss":            nullableNumber(),
		"expected_max_gain":            nullableNumber(),
		"expected_max_loss_percentage": nullableNumber(),
		"expected_max_gain_percentage": nullableNumber(),
		"stop_loss":                    nullableNumber(),
		"stop_win":                     nullableNumber(),
	})
	decisions := map[string]any{
		"type":  []any{"array", "null"},
		"items": decision,
	}
	analysis := objectOf([]string{"symbol", "current_price", "volume_histogram"}, map[string]any{
		"symbol":               map[string]any{"type": "string", "minLength": 1},
		"current_epoch":        map[string]any{"type": "integer"},
		"current_price":        numberSchema(),
		"stack_range_position": map[string]any{"type": "string"},
		"lower_stack_range":    nullableRange,
		"upper_stack_range":    nullableRange,
		"volume_histogram": map[string]any{
			"type":                 "object",
			"propertyNames":        map[string]any{"pattern": `^-?[0-9]+(\.[0-9]*)?([eE][-+]?[0-9]+)?$`},
			"additionalProperties": nonNegative(),
		},
		"stack_ranges": map[string]any{
			"type":  []any{"array", "null"},
			"items": map[string]any{"$ref": "#/$defs/stack_range"},
		},
		"sharpe_ratio": nullableNumber(),
	})
	position := objectOf([]string{"symbol"}, map[string]any{
		"symbol":              map[string]any{"type": "string"},
		"positions_to_enter":  map[string]any{"type": []any{"array", "null"}},
		"positions_to_update": map[string]any{"type": []any{"array", "null"}},
	})
	result := objectOf([]string{"strategy_position_output", "symbol_analysis_output"}, map[string]any{
		"strategy_position_output": position,
		"symbol_analysis_output":   analysis,
		"long_entry_decisions":     decisions,
		"short_entry_decisions":    decisions,
	})
	str := map[string]any{"type": "string"}
	config := objectOf([]string{
		"strategy_data_provider_config",
		"volume_histogram_strategy_config",
		"sharpe_ratio_strategy_config",
		"candle_stick_strategy_config",
		"position_management_config",
		"major_stack_range_config",
		"entry_filtering_config",
	}, map[string]any{
		"is_test": map[string]any{"type": "boolean"},
		"strategy_data_provider_config": objectOf(
			[]string{"input_top_level_directory", "start_datetime", "end_datetime"},
			map[string]any{"input_top_level_directory": str, "start_datetime": str, "end_datetime": str},
		),
		"volume_histogram_strategy_config": objectOf(
			[]string{"interval", "decay_factor", "lower_range_volume_to_upper_range_ratio_lower", "lower_range_volume_to_upper_range_ratio_upper"},
			map[string]any{
				"interval":     numberSchema(),
				"decay_factor": numberSchema(),
				"lower_range_volume_to_upper_range_ratio_lower": numberSchema(),
				"lower_range_volume_to_upper_range_ratio_upper": numberSchema(),
			},
		),
		"sharpe_ratio_strategy_config": objectOf(
			[]string{"min_sharpe_ratio", "max_sharpe_ratio"},
			map[string]any{"min_sharpe_ratio": numberSchema(), "max_sharpe_ratio": numberSchema()},
		),
		"candle_stick_strategy_config": objectOf(
			[]string{"interval", "interval_moving_average_window"},
			map[string]any{"interval": numberSchema(), "interval_moving_average_window": numberSchema()},
		),
		"position_management_config": objectOf(
			[]string{"max_cost_per_trade", "max_total_cost_exposure"},
			map[string]any{"max_cost_per_trade": numberSchema(), "max_total_cost_exposure": numberSchema()},
		),
		"major_stack_range_config": objectOf(
			[]string{"price_increment", "tolerable_window", "stack_range_min_ratio"},
			map[string]any{
				"price_increment":                   numberSchema(),
				"tolerable_window":                  numberSchema(),
				"stack_range_min_ratio":             numberSchema(),
				"volume_threshold_above_mean_ratio": nullableNumber(),
				"percentile":                        nullableNumber(),
			},
		),
		"entry_filtering_config": objectOf(
			[]string{"min_gain_loss_ratio"},
			map[string]any{"min_gain_loss_ratio": numberSchema()},
		),
	})
	return map[string]any{
		"$schema":  "https://json-schema.org/draft/2020-12/schema",
		"type":     "object",
		"required": []string{"timestamp", "config", "results"},
		"properties": map[string]any{
			"timestamp": str,
			"config":    config,
			"results":   map[string]any{"type": "array", "items": result},
		},
		"$defs": map[string]any{"stack_range": stackRange},
	}
}

var visualizationSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	raw, err := json.Marshal(visualizationSchemaDoc())
	if err != nil {
		return nil, err
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, strings.NewReader(string(raw))); err != nil {
		return nil, err
	}
	return compiler.Compile(schemaURL)
})

// schemaErrorFrom picks the innermost cause so the reported path points at
// the offending field rather than the document root.
func schemaErrorFrom(err error) error {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return &SchemaError{Reason: err.Error()}
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	path := ve.InstanceLocation
	if path == "" {
		path = "/"
	}
	return &SchemaError{Path: path, Reason: ve.Message}
}
