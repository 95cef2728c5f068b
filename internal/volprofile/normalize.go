package volprofile

import (
	"encoding/json"
	"fmt"
)

const (
	defaultCountry         = "US"
	defaultOutputDirectory = ""
	defaultNumProcesses    = 1
)

// NormalizeResult flattens one nested result into the legacy record.
//
// The ratio and the conclusion are picked differently: the ratio is the first
// non-null value scanning long decisions then short ones, while the
// conclusion is the first decision of the first non-empty list.
func NormalizeResult(res SelectionOutput) StockSymbol {
	analysis := res.SymbolAnalysisOutput
	ranges := make([]StackRange, len(analysis.StackRanges))
	copy(ranges, analysis.StackRanges)
	return StockSymbol{
		Symbol:          analysis.Symbol,
		CurrentPrice:    analysis.CurrentPrice,
		StackRanges:     ranges,
		LowerStackRange: cloneRange(analysis.LowerStackRange),
		UpperStackRange: cloneRange(analysis.UpperStackRange),
		VolumeHistogram: cloneHistogram(analysis.VolumeHistogram),
		GainLossRatio:   firstGainLossRatio(res.LongEntryDecisions, res.ShortEntryDecisions),
		SharpeRatio:     cloneFloat(analysis.SharpeRatio),
		Conclusion:      string(firstConclusion(res.LongEntryDecisions, res.ShortEntryDecisions)),
	}
}

func firstGainLossRatio(long, short []EntryDecision) *float64 {
	for _, list := range [][]EntryDecision{long, short} {
		for _, d := range list {
			if d.GainLossRatio != nil {
				return cloneFloat(d.GainLossRatio)
			}
		}
	}
	return nil
}

func firstConclusion(long, short []EntryDecision) Conclusion {
	var c Conclusion
	switch {
	case len(long) > 0:
		c = long[0].AnalysisConclusion
	case len(short) > 0:
		c = short[0].AnalysisConclusion
	}
	if c == "" {
		return ConclusionNoApplicableEntryScenario
	}
	return c
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	cp := *v
	return &cp
}

// NormalizeConfig 将嵌套策略配置映射为旧版扁平配置。
func NormalizeConfig(cfg StrategyConfig) (StockDataConfig, error) {
	if err := requireSections(cfg); err != nil {
		return StockDataConfig{}, err
	}
	provider := cfg.StrategyDataProviderConfig
	histogram := cfg.VolumeHistogramStrategyConfig
	sharpe := cfg.SharpeRatioStrategyConfig
	candle := cfg.CandleStickStrategyConfig
	position := cfg.PositionManagementConfig
	major := cfg.MajorStackRangeConfig
	filtering := cfg.EntryFilteringConfig
	return StockDataConfig{
		Country:                                defaultCountry,
		InputTopLevelDirectory:                 provider.InputTopLevelDirectory,
		OutputDirectory:                        defaultOutputDirectory,
		StartDatetime:                          provider.StartDatetime,
		EndDatetime:                            provider.EndDatetime,
		NumProcesses:                           defaultNumProcesses,
		SharpeRatioMin:                         sharpe.MinSharpeRatio,
		SharpeRatioMax:                         sharpe.MaxSharpeRatio,
		GainLossRatioThreshold:                 filtering.MinGainLossRatio,
		LowerRangeVolumeToUpperRangeRatioLower: histogram.LowerRangeVolumeToUpperRangeRatioLower,
		LowerRangeVolumeToUpperRangeRatioUpper: histogram.LowerRangeVolumeToUpperRangeRatioUpper,
		PriceIncrement:                         major.PriceIncrement,
		AboveAveragePercentage:                 cloneFloat(major.VolumeThresholdAboveMeanRatio),
		TolerableWindow:                        major.TolerableWindow,
		MaxGapPercentage:                       major.StackRangeMinRatio,
		VolumeHistogramInterval:                histogram.Interval,
		DecayFactor:                            histogram.DecayFactor,
		CandleStickInterval:                    candle.Interval,
		IntervalMovingAverageWindow:            candle.IntervalMovingAverageWindow,
		MaxCostPerTrade:                        position.MaxCostPerTrade,
		MaxTotalCostExposure:                   position.MaxTotalCostExposure,
	}, nil
}

func requireSections(cfg StrategyConfig) error {
	sections := []struct {
		path    string
		missing bool
	}{
		{"config.strategy_data_provider_config", cfg.StrategyDataProviderConfig == nil},
		{"config.volume_histogram_strategy_config", cfg.VolumeHistogramStrategyConfig == nil},
		{"config.sharpe_ratio_strategy_config", cfg.SharpeRatioStrategyConfig == nil},
		{"config.candle_stick_strategy_config", cfg.CandleStickStrategyConfig == nil},
		{"config.position_management_config", cfg.PositionManagementConfig == nil},
		{"config.major_stack_range_config", cfg.MajorStackRangeConfig == nil},
		{"config.entry_filtering_config", cfg.EntryFilteringConfig == nil},
	}
	for _, s := range sections {
		if s.missing {
			return &FieldError{Path: s.path}
		}
	}
	return nil
}

// Normalize converts a whole nested payload. It either maps every result or
// fails without partial output; result order and count are preserved.
func Normalize(data *VisualizationData) (*StockData, error) {
	if data == nil {
		return nil, &FieldError{Path: "payload"}
	}
	cfg, err := NormalizeConfig(data.Config)
	if err != nil {
		return nil, err
	}
	results := make([]StockSymbol, 0, len(data.Results))
	for _, res := range data.Results {
		results = append(results, NormalizeResult(res))
	}
	return &StockData{
		Timestamp: data.Timestamp,
		Config:    cfg,
		Results:   results,
	}, nil
}

// EnsureLegacyFormat 识别格式：新版则校验并规范化，旧版原样解码，其余报错。
func EnsureLegacyFormat(raw []byte) (*StockData, error) {
	switch ClassifyFormat(raw) {
	case FormatNew:
		data, err := ParseVisualizationData(raw)
		if err != nil {
			return nil, err
		}
		return Normalize(data)
	case FormatLegacy:
		return ParseStockData(raw)
	default:
		if !json.Valid(raw) {
			return nil, ErrMalformedJSON
		}
		return nil, fmt.Errorf("%w: results carry neither nested nor flat records", ErrUnrecognizedFormat)
	}
}
