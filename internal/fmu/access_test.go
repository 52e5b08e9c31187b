package fmu

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/san-kum/cbdfmu/internal/arena"
	"github.com/san-kum/cbdfmu/internal/signal"
)

var _ = Describe("Signal access", func() {
	var c *Instance

	BeforeEach(func() {
		var err error
		c, err = Create(otherModel{}, Identity{}, arena.Heap{}, Options{Logger: testLogger()})
		Expect(err).NotTo(HaveOccurred())
	})

	It("should validate every reference before writing", func() {
		err := c.SetReal([]signal.ValueReference{0, 5}, []float64{1, 2})
		Expect(err).To(MatchError(ErrInvalidValueReference))

		out := []float64{-1}
		Expect(c.GetReal([]signal.ValueReference{0}, out)).To(Succeed())
		Expect(out[0]).To(BeZero())
	})

	It("should reject mismatched lengths", func() {
		err := c.SetReal([]signal.ValueReference{0, 1}, []float64{1})
		Expect(err).To(MatchError(ErrInvalidArgument))
	})

	It("should allow reads but not writes after Terminate", func() {
		Expect(c.SetReal([]signal.ValueReference{4}, []float64{3})).To(Succeed())
		Expect(c.EnterInitializationMode()).To(Succeed())
		Expect(c.Terminate()).To(Succeed())

		out := make([]float64, 1)
		Expect(c.GetReal([]signal.ValueReference{4}, out)).To(Succeed())
		Expect(out[0]).To(Equal(3.0))
		Expect(c.SetReal([]signal.ValueReference{4}, []float64{1})).To(MatchError(ErrInvalidCallSequence))
	})

	It("should refuse non-real types without touching buffers", func() {
		vrs := []signal.ValueReference{0}
		ints := []int64{9}
		bools := []bool{true}
		strs := []string{"x"}

		Expect(c.GetInteger(vrs, ints)).To(MatchError(ErrUnsupportedType))
		Expect(c.SetInteger(vrs, ints)).To(MatchError(ErrUnsupportedType))
		Expect(c.GetBoolean(vrs, bools)).To(MatchError(ErrUnsupportedType))
		Expect(c.SetBoolean(vrs, bools)).To(MatchError(ErrUnsupportedType))
		Expect(c.GetString(vrs, strs)).To(MatchError(ErrUnsupportedType))
		Expect(c.SetString(vrs, strs)).To(MatchError(ErrUnsupportedType))

		Expect(ints[0]).To(Equal(int64(9)))
		Expect(bools[0]).To(BeTrue())
		Expect(strs[0]).To(Equal("x"))
	})
})
