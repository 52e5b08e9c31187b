package fmu

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/san-kum/cbdfmu/internal/arena"
	"go.uber.org/mock/gomock"
)

var _ = Describe("Step", func() {
	var (
		mockCtrl *gomock.Controller
		model    *MockModel
		detector *MockEventDetector
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		model = NewMockModel(mockCtrl)
		detector = NewMockEventDetector(mockCtrl)

		model.EXPECT().Name().Return("mock").AnyTimes()
		model.EXPECT().Variables().Return(tableOf(2)).AnyTimes()
		model.EXPECT().InitialEquations(gomock.Any()).AnyTimes()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	running := func(m Model, opts Options) *Instance {
		opts.Logger = testLogger()
		opts.LoggingOn = true
		c, err := Create(m, Identity{Name: "step"}, arena.Heap{}, opts)
		Expect(err).NotTo(HaveOccurred())
		Expect(c.ConfigureExperiment(false, 0, 0, false, 0)).To(Succeed())
		Expect(c.EnterInitializationMode()).To(Succeed())
		Expect(c.ExitInitializationMode()).To(Succeed())
		Expect(c.EnterContinuousTimeMode()).To(Succeed())
		return c
	}

	It("should evaluate the equations once per communication step", func() {
		var deltas []float64
		model.EXPECT().CalculateEquations(gomock.Any()).Do(func(env *Env) {
			deltas = append(deltas, env.Delta())
		}).Times(1)
		c := running(model, Options{})

		Expect(c.Step(0, 0.1)).To(Succeed())

		Expect(c.Time()).To(BeNumerically("~", 0.1, 1e-15))
		Expect(c.TimeLast()).To(Equal(c.Time()))
		Expect(deltas).To(HaveLen(1))
		Expect(deltas[0]).To(BeNumerically("~", 0.1, 1e-15))
	})

	It("should not lose or gain evaluations to round-off", func() {
		model.EXPECT().CalculateEquations(gomock.Any()).Times(10)
		c := running(model, Options{})

		t := 0.0
		for i := 0; i < 10; i++ {
			Expect(c.Step(t, 0.1)).To(Succeed())
			t += 0.1
		}
		Expect(c.Time()).To(BeNumerically("~", 1.0, 1e-12))
	})

	It("should split a step into the configured internal steps", func() {
		var deltas []float64
		model.EXPECT().CalculateEquations(gomock.Any()).Do(func(env *Env) {
			deltas = append(deltas, env.Delta())
		}).Times(4)
		c := running(model, Options{InternalSteps: 4})

		Expect(c.Step(0, 0.1)).To(Succeed())

		Expect(deltas).To(HaveEach(BeNumerically("~", 0.025, 1e-15)))
		Expect(c.Time()).To(BeNumerically("~", 0.1, 1e-15))
	})

	DescribeTable("should refuse a non-positive step size without touching state",
		func(h float64) {
			c := running(model, Options{})
			err := c.Step(0, h)

			Expect(err).To(MatchError(ErrInvalidStepSize))
			Expect(StatusOf(err)).To(Equal(Error))
			Expect(c.Time()).To(BeZero())
			Expect(c.State()).To(Equal(ContinuousTimeMode))
		},
		Entry("zero", 0.0),
		Entry("negative", -0.1),
		Entry("NaN", math.NaN()),
	)

	It("should refuse to step a model-exchange instance", func() {
		c := running(model, Options{Kind: ModelExchange})
		Expect(c.Step(0, 0.1)).To(MatchError(ErrUnsupported))
	})

	It("should allow stepping from event mode", func() {
		model.EXPECT().CalculateEquations(gomock.Any()).Times(1)
		c := running(model, Options{})
		Expect(c.EnterEventMode()).To(Succeed())
		Expect(c.Step(0, 0.1)).To(Succeed())
	})

	It("should fall back to no-event detection when a time event is due", func() {
		calls := 0
		model.EXPECT().CalculateEquations(gomock.Any()).Do(func(env *Env) {
			calls++
			env.Events.NextEventTimeDefined = true
			env.Events.NextEventTime = env.Time
			env.Events.TerminateSimulation = true
		}).Times(2)
		c := running(model, Options{})

		Expect(c.Step(0, 0.1)).To(Succeed())
		Expect(c.EventInfo().TerminateSimulation).To(BeTrue())

		// The due event runs the default detection, which clears the
		// termination request before the terminate check.
		Expect(c.Step(0.1, 0.1)).To(Succeed())
		Expect(calls).To(Equal(2))
	})

	Context("with a model that detects its own events", func() {
		var m detectingModel

		BeforeEach(func() {
			m = detectingModel{MockModel: model, MockEventDetector: detector}
		})

		It("should stop with Discard when the model requests termination", func() {
			model.EXPECT().CalculateEquations(gomock.Any()).Do(func(env *Env) {
				env.Events.NextEventTimeDefined = true
				env.Events.NextEventTime = env.Time
			}).Times(1)
			detector.EXPECT().StateEvent(gomock.Any()).Do(func(env *Env) {
				env.Events.TerminateSimulation = true
			}).Times(1)
			c := running(m, Options{})

			Expect(c.Step(0, 0.1)).To(Succeed())
			err := c.Step(0.1, 0.1)

			Expect(err).To(MatchError(ErrSimulationTerminated))
			Expect(StatusOf(err)).To(Equal(Discard))
			Expect(c.Time()).To(BeNumerically("~", 0.1, 1e-15))
			Expect(c.State()).To(Equal(ContinuousTimeMode))
			Expect(c.Terminate()).To(Succeed())
		})

		It("should run detection during event iteration", func() {
			detector.EXPECT().StateEvent(gomock.Any()).Do(func(env *Env) {
				env.Events.NewDiscreteStatesNeeded = true
				env.Events.NextEventTimeDefined = true
				env.Events.NextEventTime = 3
			}).Times(1)
			c := running(m, Options{})
			Expect(c.EnterEventMode()).To(Succeed())

			ev, err := c.UpdateDiscreteStates()

			Expect(err).NotTo(HaveOccurred())
			Expect(ev.NewDiscreteStatesNeeded).To(BeTrue())
			Expect(ev.NextEventTime).To(Equal(3.0))
		})
	})

	It("should report unsupported step extensions", func() {
		c := running(model, Options{})

		Expect(c.CancelStep()).To(MatchError(ErrUnsupported))
		Expect(c.SetRealInputDerivatives(nil, nil, nil)).To(MatchError(ErrUnsupported))
		Expect(c.GetDirectionalDerivative(nil, nil, nil, nil)).To(MatchError(ErrUnsupported))

		values := []float64{1, 2}
		Expect(c.GetRealOutputDerivatives(nil, nil, values)).To(MatchError(ErrUnsupported))
		Expect(values).To(Equal([]float64{0, 0}))
	})

	It("should answer status queries with Discard", func() {
		c := running(model, Options{})

		_, err := c.GetStatus(StatusDoStep)
		Expect(StatusOf(err)).To(Equal(Discard))
		_, err = c.GetRealStatus(StatusLastSuccessfulTime)
		Expect(StatusOf(err)).To(Equal(Discard))
		_, err = c.GetIntegerStatus(StatusPending)
		Expect(StatusOf(err)).To(Equal(Discard))
		_, err = c.GetBooleanStatus(StatusTerminated)
		Expect(StatusOf(err)).To(Equal(Discard))
		_, err = c.GetStringStatus(StatusPending)
		Expect(StatusOf(err)).To(Equal(Discard))
	})
})
