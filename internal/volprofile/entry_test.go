package volprofile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsStockEntryPoint(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"CUR_PRICE_IN_STACK_RANGE_WITH_ACCEPTABLE_RISK", true},
		{"Namespace.CUR_PRICE_IN_STACK_RANGE_WITH_ACCEPTABLE_RISK", true},
		{"SymbolAnalysisConclusion.CUR_PRICE_IN_HIGHEST_STACK_RANGE_WITH_ACCEPTABLE_RISK", true},
		{"CUR_PRICE_IN_LOWEST_STACK_RANGE_WITH_ACCEPTABLE_RISK", true},
		{"ALL_TIME_HIGH_WITH_ACCEPTABLE_RISK", false},
		{"CUR_PRICE_IN_BETWEEN_STACK_RANGES_WITH_ACCEPTABLE_RISK", false},
		{"CUR_PRICE_IN_STACK_RANGE_WITH_UNACCEPTABLE_RISK", false},
		{"cur_price_in_stack_range_with_acceptable_risk", false},
		{"CUR_PRICE_IN_STACK_RANGE", false},
		{"A.B.CUR_PRICE_IN_STACK_RANGE_WITH_ACCEPTABLE_RISK", false},
		{"", false},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, IsStockEntryPoint(tc.in))
		})
	}
}

func TestConclusionIsEntry(t *testing.T) {
	all := Conclusions()
	require.Len(t, all, 16)
	var entries []Conclusion
	for _, c := range all {
		assert.True(t, c.Valid(), c)
		if c.IsEntry() {
			entries = append(entries, c)
		}
	}
	assert.ElementsMatch(t, []Conclusion{
		ConclusionInHighestStackRangeAcceptable,
		ConclusionInLowestStackRangeAcceptable,
		ConclusionInStackRangeAcceptable,
	}, entries)
	assert.False(t, Conclusion("SOMETHING_ELSE").IsEntry())
}

func TestParseConclusion(t *testing.T) {
	c, err := ParseConclusion("SymbolAnalysisConclusion.NOT_ENOUGH_FOR_1_SHARE")
	require.NoError(t, err)
	assert.Equal(t, ConclusionNotEnoughForOneShare, c)

	c, err = ParseConclusion("SHARPE_RATIO_NOT_IN_RANGE")
	require.NoError(t, err)
	assert.Equal(t, ConclusionSharpeRatioNotInRange, c)

	_, err = ParseConclusion("Conclusion.MAYBE")
	assert.Error(t, err)
}

func TestIsEntryPoint(t *testing.T) {
	band := &StackRange{LowerPrice: 10, UpperPrice: 12}
	cases := []struct {
		name     string
		analysis SymbolAnalysisOutput
		want     bool
	}{
		{
			name:     "entry position with lower range",
			analysis: SymbolAnalysisOutput{StackRangePosition: PositionInLowest, LowerStackRange: band},
			want:     true,
		},
		{
			name:     "namespaced position with stack ranges",
			analysis: SymbolAnalysisOutput{StackRangePosition: "StackRangePosition.IN_THE_ONLY_STACK_RANGE", StackRanges: []StackRange{*band}},
			want:     true,
		},
		{
			name:     "entry position without ranges",
			analysis: SymbolAnalysisOutput{StackRangePosition: PositionInStackRange, StackRanges: []StackRange{}},
			want:     false,
		},
		{
			name:     "non entry position with ranges",
			analysis: SymbolAnalysisOutput{StackRangePosition: PositionHigherThanAll, UpperStackRange: band},
			want:     false,
		},
		{
			name:     "unknown position",
			analysis: SymbolAnalysisOutput{StackRangePosition: "SOMEWHERE_ELSE", UpperStackRange: band},
			want:     false,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsEntryPoint(tc.analysis))
		})
	}
}

func TestSortEntryFirst(t *testing.T) {
	in := []StockSymbol{
		{Symbol: "A", Conclusion: "NO_CLOSE_PAIR_RANGE_FOUND"},
		{Symbol: "B", Conclusion: "CUR_PRICE_IN_STACK_RANGE_WITH_ACCEPTABLE_RISK"},
		{Symbol: "C", Conclusion: "ALL_TIME_HIGH_WITH_ACCEPTABLE_RISK"},
		{Symbol: "D", Conclusion: "X.CUR_PRICE_IN_LOWEST_STACK_RANGE_WITH_ACCEPTABLE_RISK"},
		{Symbol: "E", Conclusion: "NO_STATISTICS_COMPUTED"},
	}
	out := SortEntryFirst(in)

	symbols := make([]string, 0, len(out))
	for _, r := range out {
		symbols = append(symbols, r.Symbol)
	}
	assert.Equal(t, []string{"B", "D", "A", "C", "E"}, symbols)
	assert.Equal(t, "A", in[0].Symbol)
	assert.Equal(t, 2, CountEntryPoints(in))
}

func TestPaginate(t *testing.T) {
	p := Paginate(53, 3, 25)
	assert.Equal(t, Page{Number: 3, Size: 25, TotalPages: 3, Start: 50, End: 53}, p)

	p = Paginate(53, 9, 25)
	assert.Equal(t, 3, p.Number)
	assert.Equal(t, 50, p.Start)

	p = Paginate(0, 1, 25)
	assert.Equal(t, 0, p.TotalPages)
	assert.Equal(t, 0, p.Start)
	assert.Equal(t, 0, p.End)

	p = Paginate(10, 0, 5)
	assert.Equal(t, 1, p.Number)
	assert.Equal(t, 5, p.End)
}

func TestPageWindow(t *testing.T) {
	cases := []struct {
		current, total int
		want           []int
	}{
		{1, 10, []int{1, 2, 3, 4, 5}},
		{5, 10, []int{3, 4, 5, 6, 7}},
		{10, 10, []int{6, 7, 8, 9, 10}},
		{2, 3, []int{1, 2, 3}},
		{1, 0, nil},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, PageWindow(tc.current, tc.total, 5))
	}
}

func TestHistogramLevels(t *testing.T) {
	h := VolumeHistogram{"99.5": 1, "101.5": 2, "100": 3, "101.50": 4}
	levels, err := h.Levels()
	require.NoError(t, err)
	keys := make([]string, 0, len(levels))
	for _, l := range levels {
		keys = append(keys, l.Key)
	}
	assert.Equal(t, []string{"101.5", "101.50", "100", "99.5"}, keys)
	assert.InDelta(t, 10.0, h.TotalVolume(), 1e-9)

	_, err = VolumeHistogram{"abc": 1}.Levels()
	assert.Error(t, err)
}
