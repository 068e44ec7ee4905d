package feature

import "sort"

// addStats 向特征表写入 {prefix}_total/min/max/mean/median。
// 空序列一律写全零，不产生 NaN。
func addStats(features map[string]float64, prefix string, values []float64, includeTotal bool) {
	if includeTotal {
		features[prefix+"_total"] = 0.0
	}
	for _, suffix := range []string{"_min", "_max", "_mean", "_median"} {
		features[prefix+suffix] = 0.0
	}
	if len(values) == 0 {
		return
	}

	sum := 0.0
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values {
		sum += v
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}

	if includeTotal {
		features[prefix+"_total"] = sum
	}
	features[prefix+"_min"] = minVal
	features[prefix+"_max"] = maxVal
	features[prefix+"_mean"] = sum / float64(len(values))

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		features[prefix+"_median"] = (sorted[mid-1] + sorted[mid]) / 2.0
	} else {
		features[prefix+"_median"] = sorted[mid]
	}
}

// calcIntervals 基于去重后升序的区块号计算相邻差值序列。
// 唯一区块数不足 2 时返回空序列。
func calcIntervals(blocks []int64) []float64 {
	if len(blocks) <= 1 {
		return nil
	}

	seen := make(map[int64]bool, len(blocks))
	unique := make([]int64, 0, len(blocks))
	for _, b := range blocks {
		if !seen[b] {
			seen[b] = true
			unique = append(unique, b)
		}
	}
	if len(unique) <= 1 {
		return nil
	}
	sort.Slice(unique, func(i, j int) bool { return unique[i] < unique[j] })

	intervals := make([]float64, 0, len(unique)-1)
	for i := 1; i < len(unique); i++ {
		intervals = append(intervals, float64(unique[i]-unique[i-1]))
	}
	return intervals
}

func addIntervalStats(features map[string]float64, prefix string, blocks []int64) {
	addStats(features, prefix, calcIntervals(blocks), true)
}

func minBlock(blocks []int64) float64 {
	if len(blocks) == 0 {
		return 0.0
	}
	minVal := blocks[0]
	for _, b := range blocks {
		if b < minVal {
			minVal = b
		}
	}
	return float64(minVal)
}

func maxBlock(blocks []int64) float64 {
	if len(blocks) == 0 {
		return 0.0
	}
	maxVal := blocks[0]
	for _, b := range blocks {
		if b > maxVal {
			maxVal = b
		}
	}
	return float64(maxVal)
}

func uniqueCount(blocks []int64) float64 {
	seen := make(map[int64]bool, len(blocks))
	for _, b := range blocks {
		seen[b] = true
	}
	return float64(len(seen))
}
