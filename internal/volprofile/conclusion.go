package volprofile

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Conclusion 是决策引擎对某个标的给出的分类结论。
type Conclusion string

const (
	ConclusionAllTimeHighAcceptable           Conclusion = "ALL_TIME_HIGH_WITH_ACCEPTABLE_RISK"
	ConclusionAllTimeHighUnacceptable         Conclusion = "ALL_TIME_HIGH_WITH_UNACCEPTABLE_RISK"
	ConclusionInHighestStackRangeAcceptable   Conclusion = "CUR_PRICE_IN_HIGHEST_STACK_RANGE_WITH_ACCEPTABLE_RISK"
	ConclusionInHighestStackRangeUnacceptable Conclusion = "CUR_PRICE_IN_HIGHEST_STACK_RANGE_WITH_UNACCEPTABLE_RISK"
	ConclusionInLowestStackRangeAcceptable    Conclusion = "CUR_PRICE_IN_LOWEST_STACK_RANGE_WITH_ACCEPTABLE_RISK"
	ConclusionInLowestStackRangeUnacceptable  Conclusion = "CUR_PRICE_IN_LOWEST_STACK_RANGE_WITH_UNACCEPTABLE_RISK"
	ConclusionInStackRangeAcceptable          Conclusion = "CUR_PRICE_IN_STACK_RANGE_WITH_ACCEPTABLE_RISK"
	ConclusionInStackRangeUnacceptable        Conclusion = "CUR_PRICE_IN_STACK_RANGE_WITH_UNACCEPTABLE_RISK"
	ConclusionInBetweenStackRangesAcceptable  Conclusion = "CUR_PRICE_IN_BETWEEN_STACK_RANGES_WITH_ACCEPTABLE_RISK"
	ConclusionNoStatisticsComputed            Conclusion = "NO_STATISTICS_COMPUTED"
	ConclusionSharpeRatioNotInRange           Conclusion = "SHARPE_RATIO_NOT_IN_RANGE"
	ConclusionNoClosePairRangeFound           Conclusion = "NO_CLOSE_PAIR_RANGE_FOUND"
	ConclusionNoApplicableEntryScenario       Conclusion = "NO_APPLICABLE_ENTRY_SCENARIO_FOUND"
	ConclusionNotEnoughForOneShare            Conclusion = "NOT_ENOUGH_FOR_1_SHARE"
	ConclusionExceedingMaxTotalCostExposure   Conclusion = "EXCEEDING_MAX_TOTAL_COST_EXPOSURE"
	ConclusionGainLossRatioNotAcceptable      Conclusion = "GAIN_LOSS_RATIO_NOT_ACCEPTABLE"
)

var allConclusions = []Conclusion{
	ConclusionAllTimeHighAcceptable,
	ConclusionAllTimeHighUnacceptable,
	ConclusionInHighestStackRangeAcceptable,
	ConclusionInHighestStackRangeUnacceptable,
	ConclusionInLowestStackRangeAcceptable,
	ConclusionInLowestStackRangeUnacceptable,
	ConclusionInStackRangeAcceptable,
	ConclusionInStackRangeUnacceptable,
	ConclusionInBetweenStackRangesAcceptable,
	ConclusionNoStatisticsComputed,
	ConclusionSharpeRatioNotInRange,
	ConclusionNoClosePairRangeFound,
	ConclusionNoApplicableEntryScenario,
	ConclusionNotEnoughForOneShare,
	ConclusionExceedingMaxTotalCostExposure,
	ConclusionGainLossRatioNotAcceptable,
}

// Conclusions returns every known conclusion in declaration order.
func Conclusions() []Conclusion {
	out := make([]Conclusion, len(allConclusions))
	copy(out, allConclusions)
	return out
}

// stripNamespace removes a single "Namespace." prefix.
func stripNamespace(raw string) string {
	if _, token, ok := strings.Cut(raw, "."); ok {
		return token
	}
	return raw
}

// BareToken returns raw without its "Namespace." prefix.
func BareToken(raw string) string {
	return stripNamespace(strings.TrimSpace(raw))
}

// ParseConclusion 去掉枚举命名空间前缀后校验取值。
func ParseConclusion(raw string) (Conclusion, error) {
	token := Conclusion(stripNamespace(strings.TrimSpace(raw)))
	if !token.Valid() {
		return "", fmt.Errorf("unknown analysis conclusion %q", raw)
	}
	return token, nil
}

func (c Conclusion) Valid() bool {
	switch c {
	case ConclusionAllTimeHighAcceptable,
		ConclusionAllTimeHighUnacceptable,
		ConclusionInHighestStackRangeAcceptable,
		ConclusionInHighestStackRangeUnacceptable,
		ConclusionInLowestStackRangeAcceptable,
		ConclusionInLowestStackRangeUnacceptable,
		ConclusionInStackRangeAcceptable,
		ConclusionInStackRangeUnacceptable,
		ConclusionInBetweenStackRangesAcceptable,
		ConclusionNoStatisticsComputed,
		ConclusionSharpeRatioNotInRange,
		ConclusionNoClosePairRangeFound,
		ConclusionNoApplicableEntryScenario,
		ConclusionNotEnoughForOneShare,
		ConclusionExceedingMaxTotalCostExposure,
		ConclusionGainLossRatioNotAcceptable:
		return true
	default:
		return false
	}
}

// IsEntry reports whether the conclusion is a buy signal. Only the three
// "current price inside a stack range with acceptable risk" outcomes qualify;
// all-time-high and in-between variants do not.
func (c Conclusion) IsEntry() bool {
	switch c {
	case ConclusionInHighestStackRangeAcceptable,
		ConclusionInLowestStackRangeAcceptable,
		ConclusionInStackRangeAcceptable:
		return true
	case ConclusionAllTimeHighAcceptable,
		ConclusionAllTimeHighUnacceptable,
		ConclusionInHighestStackRangeUnacceptable,
		ConclusionInLowestStackRangeUnacceptable,
		ConclusionInStackRangeUnacceptable,
		ConclusionInBetweenStackRangesAcceptable,
		ConclusionNoStatisticsComputed,
		ConclusionSharpeRatioNotInRange,
		ConclusionNoClosePairRangeFound,
		ConclusionNoApplicableEntryScenario,
		ConclusionNotEnoughForOneShare,
		ConclusionExceedingMaxTotalCostExposure,
		ConclusionGainLossRatioNotAcceptable:
		return false
	default:
		return false
	}
}

func (c Conclusion) String() string { return string(c) }

// UnmarshalJSON strips the wire namespace once so downstream code only ever
// sees bare tokens.
func (c *Conclusion) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("analysis_conclusion: %w", err)
	}
	parsed, err := ParseConclusion(raw)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// OrderIntent 订单意图。
type OrderIntent string

const (
	IntentBuyToOpen   OrderIntent = "BUY_TO_OPEN"
	IntentSellToOpen  OrderIntent = "SELL_TO_OPEN"
	IntentBuyToClose  OrderIntent = "BUY_TO_CLOSE"
	IntentSellToClose OrderIntent = "SELL_TO_CLOSE"
)

func (o OrderIntent) Valid() bool {
	switch o {
	case IntentBuyToOpen, IntentSellToOpen, IntentBuyToClose, IntentSellToClose:
		return true
	default:
		return false
	}
}

func (o *OrderIntent) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("intent: %w", err)
	}
	v := OrderIntent(stripNamespace(raw))
	if !v.Valid() {
		return fmt.Errorf("unknown order intent %q", raw)
	}
	*o = v
	return nil
}

// StackRangePosition 描述当前价格相对成交堆积区间的位置。
type StackRangePosition string

const (
	PositionHigherThanAll StackRangePosition = "HIGHER_THAN_ALL_STACK_RANGES"
	PositionInHighest     StackRangePosition = "IN_HIGHEST_STACK_RANGE"
	PositionInLowest      StackRangePosition = "IN_LOWEST_STACK_RANGE"
	PositionInTheOnly     StackRangePosition = "IN_THE_ONLY_STACK_RANGE"
	PositionInStackRange  StackRangePosition = "IN_STACK_RANGE"
	PositionInBetween     StackRangePosition = "IN_BETWEEN_STACK_RANGES"
	PositionLowerThanAll  StackRangePosition = "LOWER_THAN_ALL_STACK_RANGES"
	PositionNoStackRange  StackRangePosition = "NO_STACK_RANGE"
)

// EntryStackRangePositions lists the positions that can turn into an entry.
func EntryStackRangePositions() []StackRangePosition {
	return []StackRangePosition{
		PositionInHighest,
		PositionInLowest,
		PositionInTheOnly,
		PositionInStackRange,
	}
}

// Known reports whether p is one of the declared positions. Unknown tokens are
// kept verbatim and never count as entries.
func (p StackRangePosition) Known() bool {
	switch p {
	case PositionHigherThanAll,
		PositionInHighest,
		PositionInLowest,
		PositionInTheOnly,
		PositionInStackRange,
		PositionInBetween,
		PositionLowerThanAll,
		PositionNoStackRange:
		return true
	default:
		return false
	}
}

func (p StackRangePosition) isEntry() bool {
	switch p {
	case PositionInHighest, PositionInLowest, PositionInTheOnly, PositionInStackRange:
		return true
	default:
		return false
	}
}

func (p *StackRangePosition) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("stack_range_position: %w", err)
	}
	*p = StackRangePosition(stripNamespace(raw))
	return nil
}
