package fmu

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/san-kum/cbdfmu/internal/arena"
	"github.com/san-kum/cbdfmu/internal/signal"
	"go.uber.org/mock/gomock"
)

var _ = Describe("Instance lifecycle", func() {
	var (
		mockCtrl *gomock.Controller
		model    *MockModel
		tracker  *arena.Tracker
		inits    int
	)

	create := func() *Instance {
		c, err := Create(model, Identity{Name: "pid1", GUID: "{g}"}, tracker, Options{Logger: testLogger(), LoggingOn: true})
		Expect(err).NotTo(HaveOccurred())
		return c
	}

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		model = NewMockModel(mockCtrl)
		tracker = arena.NewTracker(nil)
		inits = 0

		model.EXPECT().Name().Return("mock").AnyTimes()
		model.EXPECT().Variables().Return(tableOf(3)).AnyTimes()
		model.EXPECT().InitialEquations(gomock.Any()).Do(func(env *Env) {
			inits++
			env.Signals.Zero()
			env.Signals.SetAt(2, 7)
		}).AnyTimes()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should create an instance in Instantiated with initial equations applied", func() {
		c := create()

		Expect(c.State()).To(Equal(Instantiated))
		Expect(c.NumSignals()).To(Equal(3))
		Expect(c.ID()).NotTo(BeEmpty())
		Expect(c.Identity().Name).To(Equal("pid1"))
		Expect(inits).To(Equal(1))

		out := make([]float64, 3)
		Expect(c.GetReal([]signal.ValueReference{0, 1, 2}, out)).To(Succeed())
		Expect(out).To(Equal([]float64{0, 0, 7}))
		Expect(tracker.Outstanding()).To(Equal(1))
	})

	It("should reject unusable arguments", func() {
		_, err := Create(nil, Identity{}, tracker, Options{})
		Expect(err).To(MatchError(ErrInvalidArgument))

		_, err = Create(model, Identity{}, nil, Options{})
		Expect(err).To(MatchError(ErrInvalidArgument))
	})

	It("should fail cleanly when allocation fails", func() {
		tracker.FailNext()
		c, err := Create(model, Identity{}, tracker, Options{Logger: testLogger()})

		Expect(c).To(BeNil())
		Expect(err).To(MatchError(ErrAllocation))
		Expect(err).To(MatchError(arena.ErrExhausted))
		Expect(inits).To(BeZero())
		Expect(tracker.Outstanding()).To(BeZero())
	})

	It("should walk the nominal call sequence", func() {
		c := create()

		Expect(c.ConfigureExperiment(true, 1e-6, 2.5, true, 10)).To(Succeed())
		Expect(c.Time()).To(Equal(2.5))
		Expect(c.TimeLast()).To(Equal(2.5))
		Expect(c.Experiment().StopTime).To(Equal(10.0))

		Expect(c.EnterInitializationMode()).To(Succeed())
		Expect(c.State()).To(Equal(InitializationMode))
		Expect(c.ExitInitializationMode()).To(Succeed())
		Expect(c.State()).To(Equal(EventMode))
		Expect(c.EnterContinuousTimeMode()).To(Succeed())
		Expect(c.State()).To(Equal(ContinuousTimeMode))
		Expect(c.EnterEventMode()).To(Succeed())
		Expect(c.NewEventIteration()).To(BeTrue())

		ev, err := c.UpdateDiscreteStates()
		Expect(err).NotTo(HaveOccurred())
		Expect(ev.TerminateSimulation).To(BeFalse())
		Expect(c.NewEventIteration()).To(BeFalse())

		Expect(c.Terminate()).To(Succeed())
		Expect(c.State()).To(Equal(Terminated))
		Expect(Destroy(c)).To(Succeed())
		Expect(c.State()).To(Equal(Destroyed))
		Expect(tracker.Outstanding()).To(BeZero())
	})

	DescribeTable("should refuse calls made out of order",
		func(prepare func(c *Instance), call func(c *Instance) error) {
			c := create()
			prepare(c)
			before := c.State()

			err := call(c)

			Expect(err).To(MatchError(ErrInvalidCallSequence))
			Expect(StatusOf(err)).To(Equal(Error))
			Expect(c.State()).To(Equal(before))

			var ce *CallError
			Expect(errors.As(err, &ce)).To(BeTrue())
			Expect(ce.State).To(Equal(before))
		},
		Entry("exit before enter", func(*Instance) {}, (*Instance).ExitInitializationMode),
		Entry("continuous time from Instantiated", func(*Instance) {}, (*Instance).EnterContinuousTimeMode),
		Entry("terminate from Instantiated", func(*Instance) {}, (*Instance).Terminate),
		Entry("step from Instantiated", func(*Instance) {}, func(c *Instance) error { return c.Step(0, 0.1) }),
		Entry("configure during initialization",
			func(c *Instance) { Expect(c.EnterInitializationMode()).To(Succeed()) },
			func(c *Instance) error { return c.ConfigureExperiment(false, 0, 1, false, 0) }),
		Entry("destroy while running",
			func(c *Instance) {
				Expect(c.EnterInitializationMode()).To(Succeed())
				Expect(c.ExitInitializationMode()).To(Succeed())
			},
			func(c *Instance) error { return Destroy(c) }),
		Entry("set after terminate",
			func(c *Instance) {
				Expect(c.EnterInitializationMode()).To(Succeed())
				Expect(c.Terminate()).To(Succeed())
			},
			func(c *Instance) error { return c.SetReal([]signal.ValueReference{0}, []float64{1}) }),
		Entry("update discrete states outside event mode",
			func(*Instance) {},
			func(c *Instance) error { _, err := c.UpdateDiscreteStates(); return err }),
	)

	It("should reject everything after Destroy", func() {
		c := create()
		Expect(Destroy(c)).To(Succeed())

		Expect(c.GetReal([]signal.ValueReference{0}, make([]float64, 1))).To(MatchError(ErrInvalidCallSequence))
		Expect(c.EnterInitializationMode()).To(MatchError(ErrInvalidCallSequence))
		Expect(Destroy(c)).To(MatchError(ErrInvalidCallSequence))
		_, err := c.Capture()
		Expect(err).To(MatchError(ErrInvalidCallSequence))
	})

	It("should treat Destroy(nil) as a no-op", func() {
		Expect(Destroy(nil)).To(Succeed())
	})

	It("should reset to the freshly created signals", func() {
		c := create()
		Expect(c.EnterInitializationMode()).To(Succeed())
		Expect(c.SetReal([]signal.ValueReference{0, 2}, []float64{3, 4})).To(Succeed())
		Expect(c.ExitInitializationMode()).To(Succeed())

		Expect(c.Reset()).To(Succeed())

		Expect(c.State()).To(Equal(Instantiated))
		Expect(c.EventInfo()).To(Equal(EventInfo{}))
		Expect(inits).To(Equal(2))
		out := make([]float64, 3)
		Expect(c.GetReal([]signal.ValueReference{0, 1, 2}, out)).To(Succeed())
		Expect(out).To(Equal([]float64{0, 0, 7}))
	})

	It("should resolve names through the symbol table", func() {
		c := create()
		vr, err := c.Lookup("s2")
		Expect(err).NotTo(HaveOccurred())
		Expect(vr).To(Equal(signal.ValueReference(2)))

		_, err = c.Lookup("nope")
		Expect(err).To(MatchError(ErrInvalidValueReference))
		Expect(err).To(MatchError(signal.ErrUnknownName))
	})

	It("should accept debug logging categories", func() {
		c := create()
		Expect(c.SetDebugLogging(false)).To(Succeed())
		Expect(c.LoggingOn()).To(BeFalse())

		Expect(c.SetDebugLogging(true, CategoryEvents)).To(Succeed())
		Expect(c.categoryEnabled(CategoryEvents)).To(BeTrue())
		Expect(c.categoryEnabled(CategoryStatusDiscard)).To(BeFalse())

		Expect(c.SetDebugLogging(true, CategoryAll)).To(Succeed())
		Expect(c.categoryEnabled(CategoryStatusDiscard)).To(BeTrue())
	})
})
