package volprofile

// StackRange 描述一段成交量堆积的价格区间。
type StackRange struct {
	LowerPrice       float64 `json:"lower_price"`
	UpperPrice       float64 `json:"upper_price"`
	TotalVolume      float64 `json:"total_volume"`
	VolumePercentage float64 `json:"volume_percentage"`
	AverageVolume    float64 `json:"average_volume"`
	PriceLevels      int     `json:"price_levels"`
	VolumeDensity    float64 `json:"volume_density"`
}

// Contains reports whether price lies inside the band, bounds included.
func (r StackRange) Contains(price float64) bool {
	return price >= r.LowerPrice && price <= r.UpperPrice
}

func cloneRange(r *StackRange) *StackRange {
	if r == nil {
		return nil
	}
	cp := *r
	return &cp
}

// EntryDecision 是后端多/空策略给出的单条入场评估。
type EntryDecision struct {
	CurrentEpoch              int64        `json:"current_epoch"`
	AnalysisConclusion        Conclusion   `json:"analysis_conclusion"`
	Intent                    *OrderIntent `json:"intent"`
	Quantity                  *float64     `json:"quantity"`
	Price                     *float64     `json:"price"`
	GainLossRatio             *float64     `json:"gain_loss_ratio"`
	ExpectedMaxLoss           *float64     `json:"expected_max_loss"`
	ExpectedMaxGain           *float64     `json:"expected_max_gain"`
	ExpectedMaxLossPercentage *float64     `json:"expected_max_loss_percentage"`
	ExpectedMaxGainPercentage *float64     `json:"expected_max_gain_percentage"`
	StopLoss                  *float64     `json:"stop_loss"`
	StopWin                   *float64     `json:"stop_win"`
}

// StrategyPositionOutput lists positions the strategy wants to open or amend.
// Position bodies are opaque to the dashboard.
type StrategyPositionOutput struct {
	Symbol            string           `json:"symbol"`
	PositionsToEnter  []map[string]any `json:"positions_to_enter"`
	PositionsToUpdate []map[string]any `json:"positions_to_update"`
}

// SymbolAnalysisOutput 为单个标的的成交量分布分析结果。
type SymbolAnalysisOutput struct {
	Symbol             string             `json:"symbol"`
	CurrentEpoch       int64              `json:"current_epoch"`
	CurrentPrice       float64            `json:"current_price"`
	StackRangePosition StackRangePosition `json:"stack_range_position"`
	LowerStackRange    *StackRange        `json:"lower_stack_range"`
	UpperStackRange    *StackRange        `json:"upper_stack_range"`
	VolumeHistogram    VolumeHistogram    `json:"volume_histogram"`
	StackRanges        []StackRange       `json:"stack_ranges,omitempty"`
	SharpeRatio        *float64           `json:"sharpe_ratio,omitempty"`
}

// SelectionOutput is one entry of the nested results list.
type SelectionOutput struct {
	StrategyPositionOutput StrategyPositionOutput `json:"strategy_position_output"`
	SymbolAnalysisOutput   SymbolAnalysisOutput   `json:"symbol_analysis_output"`
	LongEntryDecisions     []EntryDecision        `json:"long_entry_decisions,omitempty"`
	ShortEntryDecisions    []EntryDecision        `json:"short_entry_decisions,omitempty"`
}

type StrategyDataProviderConfig struct {
	InputTopLevelDirectory string `json:"input_top_level_directory"`
	StartDatetime          string `json:"start_datetime"`
	EndDatetime            string `json:"end_datetime"`
}

// VolumeHistogramStrategyConfig 含 logistic decay 扩展字段。
type VolumeHistogramStrategyConfig struct {
	Interval                               float64  `json:"interval"`
	DecayFactor                            float64  `json:"decay_factor"`
	LowerRangeVolumeToUpperRangeRatioLower float64  `json:"lower_range_volume_to_upper_range_ratio_lower"`
	LowerRangeVolumeToUpperRangeRatioUpper float64  `json:"lower_range_volume_to_upper_range_ratio_upper"`
	AllTimeHighRiskPercentageThreshold     float64  `json:"all_time_high_risk_percentage_threshold"`
	Resolution                             *float64 `json:"resolution,omitempty"`
	AccumulatedResolutionToPriceRatio      *float64 `json:"accumulated_resolution_to_price_ratio,omitempty"`
	LongTermDecayFactor                    *float64 `json:"long_term_decay_factor,omitempty"`
	DecayRate                              *float64 `json:"decay_rate,omitempty"`
	Midpoint                               *float64 `json:"midpoint,omitempty"`
}

type SharpeRatioStrategyConfig struct {
	PastDays         int     `json:"past_days"`
	MinSharpeRatio   float64 `json:"min_sharpe_ratio"`
	MaxSharpeRatio   float64 `json:"max_sharpe_ratio"`
	RiskFreeRate     float64 `json:"risk_free_rate"`
	VolatilityMethod string  `json:"volatility_method"`
}

type CandleStickStrategyConfig struct {
	Interval                    float64 `json:"interval"`
	IntervalMovingAverageWindow float64 `json:"interval_moving_average_window"`
}

type PositionManagementConfig struct {
	MaxCostPerTrade      float64 `json:"max_cost_per_trade"`
	MaxTotalCostExposure float64 `json:"max_total_cost_exposure"`
}

type MajorStackRangeConfig struct {
	PriceIncrement                float64  `json:"price_increment"`
	TolerableWindow               float64  `json:"tolerable_window"`
	StackRangeMinRatio            float64  `json:"stack_range_min_ratio"`
	VolumeThresholdAboveMeanRatio *float64 `json:"volume_threshold_above_mean_ratio,omitempty"`
	Percentile                    *float64 `json:"percentile,omitempty"`
}

type EntryFilteringConfig struct {
	MinGainLossRatio float64 `json:"min_gain_loss_ratio"`
	MinGainPercent   float64 `json:"min_gain_percent"`
	MaxLossPercent   float64 `json:"max_loss_percent"`
	MinGainAmount    float64 `json:"min_gain_amount"`
	MaxLossAmount    float64 `json:"max_loss_amount"`
}

type DedupExistingPositionConfig struct {
	MinPercentageWithRespectToExistingPositionEntryPrice float64 `json:"min_percentage_with_respect_to_existing_position_entry_price"`
}

// StrategyConfig mirrors the nested backend strategy configuration.
// Sections are pointers so a payload built in code can omit them; the
// normalizer reports the missing section instead of dereferencing nil.
type StrategyConfig struct {
	IsTest                        bool                           `json:"is_test"`
	StrategyDataProviderConfig    *StrategyDataProviderConfig    `json:"strategy_data_provider_config"`
	VolumeHistogramStrategyConfig *VolumeHistogramStrategyConfig `json:"volume_histogram_strategy_config"`
	SharpeRatioStrategyConfig     *SharpeRatioStrategyConfig     `json:"sharpe_ratio_strategy_config"`
	CandleStickStrategyConfig     *CandleStickStrategyConfig     `json:"candle_stick_strategy_config"`
	PositionManagementConfig      *PositionManagementConfig      `json:"position_management_config"`
	MajorStackRangeConfig         *MajorStackRangeConfig         `json:"major_stack_range_config"`
	EntryFilteringConfig          *EntryFilteringConfig          `json:"entry_filtering_config"`
	DedupExistingPositionConfig   *DedupExistingPositionConfig   `json:"dedup_existing_position_config,omitempty"`
}

// VisualizationData 是新版（嵌套）结果文件的根节点。
type VisualizationData struct {
	Timestamp string            `json:"timestamp"`
	Config    StrategyConfig    `json:"config"`
	Results   []SelectionOutput `json:"results"`
}

// StockSymbol is the flat per-symbol record the dashboard renders.
type StockSymbol struct {
	Symbol          string          `json:"symbol"`
	CurrentPrice    float64         `json:"current_price"`
	StackRanges     []StackRange    `json:"stack_ranges"`
	LowerStackRange *StackRange     `json:"lower_stack_range,omitempty"`
	UpperStackRange *StackRange     `json:"upper_stack_range,omitempty"`
	VolumeHistogram VolumeHistogram `json:"volume_histogram"`
	GainLossRatio   *float64        `json:"gain_loss_ratio,omitempty"`
	SharpeRatio     *float64        `json:"sharpe_ratio,omitempty"`
	Conclusion      string          `json:"conclusion"`
}

// StockDataConfig 为旧版扁平配置。
type StockDataConfig struct {
	Country                                string   `json:"country"`
	InputTopLevelDirectory                 string   `json:"input_top_level_directory"`
	OutputDirectory                        string   `json:"output_directory"`
	StartDatetime                          string   `json:"start_datetime"`
	EndDatetime                            string   `json:"end_datetime"`
	NumProcesses                           int      `json:"num_processes"`
	SharpeRatioMin                         float64  `json:"sharpe_ratio_min"`
	SharpeRatioMax                         float64  `json:"sharpe_ratio_max"`
	GainLossRatioThreshold                 float64  `json:"gain_loss_ratio_threshold"`
	LowerRangeVolumeToUpperRangeRatioLower float64  `json:"lower_range_volume_to_upper_range_ratio_lower"`
	LowerRangeVolumeToUpperRangeRatioUpper float64  `json:"lower_range_volume_to_upper_range_ratio_upper"`
	PriceIncrement                         float64  `json:"price_increment"`
	AboveAveragePercentage                 *float64 `json:"above_average_percentage,omitempty"`
	TolerableWindow                        float64  `json:"tolerable_window"`
	MaxGapPercentage                       float64  `json:"max_gap_percentage"`
	VolumeHistogramInterval                float64  `json:"volume_histogram_interval"`
	DecayFactor                            float64  `json:"decay_factor"`
	CandleStickInterval                    float64  `json:"candle_stick_interval"`
	IntervalMovingAverageWindow            float64  `json:"interval_moving_average_window"`
	MaxCostPerTrade                        float64  `json:"max_cost_per_trade"`
	MaxTotalCostExposure                   float64  `json:"max_total_cost_exposure"`
}

// StockData 为旧版扁平结果文件，也是 dashboard 使用的视图模型。
type StockData struct {
	Timestamp string          `json:"timestamp"`
	Config    StockDataConfig `json:"config"`
	Results   []StockSymbol   `json:"results"`
}
