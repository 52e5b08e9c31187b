package fmu

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/san-kum/cbdfmu/internal/arena"
)

var _ = Describe("Model exchange", func() {
	var c *Instance

	BeforeEach(func() {
		var err error
		c, err = Create(newDecay(), Identity{Name: "me"}, arena.Heap{}, Options{Kind: ModelExchange, Logger: testLogger()})
		Expect(err).NotTo(HaveOccurred())
		Expect(c.EnterInitializationMode()).To(Succeed())
		Expect(c.ExitInitializationMode()).To(Succeed())
	})

	It("should expose states, derivatives and indicators", func() {
		Expect(c.EnterContinuousTimeMode()).To(Succeed())

		x := make([]float64, 1)
		Expect(c.GetContinuousStates(x)).To(Succeed())
		Expect(x).To(Equal([]float64{1}))

		dx := make([]float64, 1)
		Expect(c.GetDerivatives(dx)).To(Succeed())
		Expect(dx).To(Equal([]float64{-2}))

		Expect(c.SetContinuousStates([]float64{0.25})).To(Succeed())
		Expect(c.EventInfo().ValuesOfContinuousStatesChanged).To(BeTrue())
		Expect(c.GetDerivatives(dx)).To(Succeed())
		Expect(dx).To(Equal([]float64{-0.5}))

		z := make([]float64, 1)
		Expect(c.GetEventIndicators(z)).To(Succeed())
		Expect(z).To(Equal([]float64{-0.25}))

		nominals := make([]float64, 1)
		Expect(c.GetNominalsOfContinuousStates(nominals)).To(Succeed())
		Expect(nominals).To(Equal([]float64{1}))
	})

	It("should only set states in continuous-time mode", func() {
		Expect(c.SetContinuousStates([]float64{0})).To(MatchError(ErrInvalidCallSequence))
	})

	It("should check buffer lengths", func() {
		Expect(c.EnterContinuousTimeMode()).To(Succeed())
		Expect(c.GetDerivatives(make([]float64, 2))).To(MatchError(ErrInvalidArgument))
		Expect(c.SetContinuousStates(nil)).To(MatchError(ErrInvalidArgument))
	})

	It("should not let time run backwards", func() {
		Expect(c.SetTime(1)).To(Succeed())
		Expect(c.Time()).To(Equal(1.0))
		Expect(c.SetTime(-1)).To(MatchError(ErrInvalidArgument))
		Expect(c.Time()).To(Equal(1.0))
	})

	It("should report due time events after an integrator step", func() {
		Expect(c.EnterContinuousTimeMode()).To(Succeed())
		enter, terminate, err := c.CompletedIntegratorStep(true)
		Expect(err).NotTo(HaveOccurred())
		Expect(enter).To(BeFalse())
		Expect(terminate).To(BeFalse())

		c.env.Events.NextEventTimeDefined = true
		c.env.Events.NextEventTime = 0.5
		Expect(c.SetTime(0.5)).To(Succeed())
		enter, _, err = c.CompletedIntegratorStep(true)
		Expect(err).NotTo(HaveOccurred())
		Expect(enter).To(BeTrue())
	})

	It("should refuse model-exchange calls on a co-simulation instance", func() {
		cs, err := Create(newDecay(), Identity{}, arena.Heap{}, Options{Logger: testLogger()})
		Expect(err).NotTo(HaveOccurred())
		Expect(cs.SetTime(1)).To(MatchError(ErrUnsupported))
		Expect(cs.GetDerivatives(make([]float64, 1))).To(MatchError(ErrUnsupported))
	})
})
