package pipeline

// BranchPredictorStats holds statistics for the branch predictor.
type BranchPredictorStats struct {
	// Predictions is the total number of branches resolved.
	Predictions uint64
	// Correct is the number of not-taken branches.
	Correct uint64
	// Mispredictions is the number of taken branches, each costing a flush.
	Mispredictions uint64
}

// Accuracy returns the prediction accuracy as a percentage.
func (s BranchPredictorStats) Accuracy() float64 {
	if s.Predictions == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Predictions) * 100
}

// MispredictionRate returns the misprediction rate as a percentage.
func (s BranchPredictorStats) MispredictionRate() float64 {
	if s.Predictions == 0 {
		return 0
	}
	return float64(s.Mispredictions) / float64(s.Predictions) * 100
}

// BranchPredictor is the static always-not-taken predictor implied by
// sequential fetch. Fetch never consults it; it only scores resolutions.
type BranchPredictor struct {
	stats BranchPredictorStats
}

// NewBranchPredictor creates a new branch predictor.
func NewBranchPredictor() *BranchPredictor {
	return &BranchPredictor{}
}

// Predict returns the predicted direction, which is always not taken.
func (bp *BranchPredictor) Predict() bool {
	return false
}

// Resolve records the actual outcome and returns true if the pipeline must
// flush the wrong-path instruction.
func (bp *BranchPredictor) Resolve(taken bool) bool {
	bp.stats.Predictions++

	if taken == bp.Predict() {
		bp.stats.Correct++
		return false
	}

	bp.stats.Mispredictions++
	return true
}

// Stats returns predictor statistics.
func (bp *BranchPredictor) Stats() BranchPredictorStats {
	return bp.stats
}

// Reset clears predictor statistics.
func (bp *BranchPredictor) Reset() {
	bp.stats = BranchPredictorStats{}
}
