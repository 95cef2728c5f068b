package volprofile

import (
	"sort"
)

// IsStockEntryPoint reports whether a flat record's conclusion is a buy
// signal. A "Namespace." prefix is tolerated; matching is exact otherwise.
func IsStockEntryPoint(conclusion string) bool {
	return Conclusion(stripNamespace(conclusion)).IsEntry()
}

// IsEntryPoint 基于原始分析输出判断是否可能成为入场点：
// 价格位置属于入场位置集合，且至少存在一个堆积区间。
func IsEntryPoint(analysis SymbolAnalysisOutput) bool {
	if !StackRangePosition(stripNamespace(string(analysis.StackRangePosition))).isEntry() {
		return false
	}
	return analysis.LowerStackRange != nil ||
		analysis.UpperStackRange != nil ||
		len(analysis.StackRanges) > 0
}

// SortEntryFirst returns a copy with entry points moved to the front. The
// relative order inside each group is kept and the input is not modified.
func SortEntryFirst(records []StockSymbol) []StockSymbol {
	out := make([]StockSymbol, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		return IsStockEntryPoint(out[i].Conclusion) && !IsStockEntryPoint(out[j].Conclusion)
	})
	return out
}

// CountEntryPoints 统计入场点数量。
func CountEntryPoints(records []StockSymbol) int {
	n := 0
	for _, r := range records {
		if IsStockEntryPoint(r.Conclusion) {
			n++
		}
	}
	return n
}
