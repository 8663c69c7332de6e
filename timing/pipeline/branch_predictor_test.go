package pipeline_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/pipesim/timing/pipeline"
)

var _ = Describe("BranchPredictor", func() {
	var bp *pipeline.BranchPredictor

	BeforeEach(func() {
		bp = pipeline.NewBranchPredictor()
	})

	It("should always predict not taken", func() {
		Expect(bp.Predict()).To(BeFalse())
	})

	It("should request a flush only for taken branches", func() {
		Expect(bp.Resolve(false)).To(BeFalse())
		Expect(bp.Resolve(true)).To(BeTrue())
	})

	It("should track accuracy", func() {
		bp.Resolve(false)
		bp.Resolve(false)
		bp.Resolve(false)
		bp.Resolve(true)

		stats := bp.Stats()
		Expect(stats.Predictions).To(Equal(uint64(4)))
		Expect(stats.Correct).To(Equal(uint64(3)))
		Expect(stats.Mispredictions).To(Equal(uint64(1)))
		Expect(stats.Accuracy()).To(BeNumerically("~", 75.0, 0.01))
		Expect(stats.MispredictionRate()).To(BeNumerically("~", 25.0, 0.01))
	})

	It("should report zero rates before any branch", func() {
		Expect(bp.Stats().Accuracy()).To(BeZero())
		Expect(bp.Stats().MispredictionRate()).To(BeZero())
	})

	It("should clear statistics on reset", func() {
		bp.Resolve(true)
		bp.Reset()
		Expect(bp.Stats()).To(Equal(pipeline.BranchPredictorStats{}))
	})
})
