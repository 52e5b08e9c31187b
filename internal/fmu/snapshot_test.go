package fmu

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/san-kum/cbdfmu/internal/arena"
	"github.com/san-kum/cbdfmu/internal/codec"
	"github.com/san-kum/cbdfmu/internal/signal"
)

var _ = Describe("Snapshot", func() {
	var (
		tracker *arena.Tracker
		c       *Instance
		all     []signal.ValueReference
	)

	special := []float64{
		math.Copysign(0, -1),
		math.SmallestNonzeroFloat64,
		math.Inf(-1),
	}

	BeforeEach(func() {
		tracker = arena.NewTracker(arena.NewPool())
		var err error
		c, err = Create(newDecay(), Identity{Name: "snap"}, tracker, Options{Kind: ModelExchange, Logger: testLogger()})
		Expect(err).NotTo(HaveOccurred())
		all = []signal.ValueReference{decayX, decayK, decayDX}
	})

	read := func() []float64 {
		out := make([]float64, len(all))
		Expect(c.GetReal(all, out)).To(Succeed())
		return out
	}

	bits := func(vs []float64) []uint64 {
		out := make([]uint64, len(vs))
		for i, v := range vs {
			out[i] = math.Float64bits(v)
		}
		return out
	}

	It("should restore bit-identical signals", func() {
		Expect(c.SetReal(all, special)).To(Succeed())
		s, err := c.Capture()
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Len()).To(Equal(3))

		Expect(c.SetReal(all, []float64{1, 2, 3})).To(Succeed())
		Expect(c.Restore(s)).To(Succeed())

		Expect(bits(read())).To(Equal(bits(special)))
		Expect(c.Release(s)).To(Succeed())
		Expect(tracker.Outstanding()).To(Equal(1))
	})

	It("should hold an independent copy", func() {
		s, err := c.Capture()
		Expect(err).NotTo(HaveOccurred())
		before := s.Values()

		Expect(c.SetReal([]signal.ValueReference{decayX}, []float64{42})).To(Succeed())
		Expect(s.Values()).To(Equal(before))
		s.Release()
	})

	It("should leave time and events alone on restore", func() {
		Expect(c.ConfigureExperiment(false, 0, 5, false, 0)).To(Succeed())
		s, err := c.Capture()
		Expect(err).NotTo(HaveOccurred())
		Expect(c.EnterInitializationMode()).To(Succeed())
		Expect(c.ExitInitializationMode()).To(Succeed())
		Expect(c.SetTime(7)).To(Succeed())

		Expect(c.Restore(s)).To(Succeed())
		Expect(c.Time()).To(Equal(7.0))
		Expect(c.State()).To(Equal(EventMode))
	})

	It("should serialize to M big-endian doubles and back", func() {
		Expect(c.SetReal(all, []float64{1, -2.5, 0})).To(Succeed())
		s, err := c.Capture()
		Expect(err).NotTo(HaveOccurred())

		n, err := c.SerializedSize(s)
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(3 * codec.Width))

		b, err := c.Serialize(s)
		Expect(err).NotTo(HaveOccurred())
		Expect(b[:8]).To(Equal([]byte{0x3f, 0xf0, 0, 0, 0, 0, 0, 0}))
		Expect(b[8:16]).To(Equal([]byte{0xc0, 0x04, 0, 0, 0, 0, 0, 0}))

		into := make([]byte, n)
		Expect(c.SerializeInto(s, into)).To(Succeed())
		Expect(into).To(Equal(b))
		Expect(c.SerializeInto(s, make([]byte, n-1))).To(MatchError(ErrSnapshotMismatch))

		Expect(c.SetReal(all, []float64{9, 9, 9})).To(Succeed())
		d, err := c.Deserialize(b)
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Restore(d)).To(Succeed())
		Expect(read()).To(Equal([]float64{1, -2.5, 0}))

		s.Release()
		d.Release()
		Expect(tracker.Outstanding()).To(Equal(1))
	})

	It("should reject bytes of the wrong length", func() {
		_, err := c.Deserialize(make([]byte, 2*codec.Width))
		Expect(err).To(MatchError(ErrSnapshotMismatch))
		_, err = c.Deserialize(make([]byte, 3*codec.Width+1))
		Expect(err).To(MatchError(ErrSnapshotMismatch))
		Expect(tracker.Outstanding()).To(Equal(1))
	})

	It("should reject a snapshot of another model", func() {
		other, err := Create(otherModel{}, Identity{}, arena.Heap{}, Options{Logger: testLogger()})
		Expect(err).NotTo(HaveOccurred())
		s, err := other.Capture()
		Expect(err).NotTo(HaveOccurred())

		Expect(c.Restore(s)).To(MatchError(ErrSnapshotMismatch))
		_, err = c.Serialize(s)
		Expect(err).To(MatchError(ErrSnapshotMismatch))
	})

	It("should refuse released snapshots and tolerate double release", func() {
		s, err := c.Capture()
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Release(s)).To(Succeed())
		Expect(c.Release(s)).To(Succeed())
		Expect(c.Release(nil)).To(Succeed())
		Expect(s.Released()).To(BeTrue())

		Expect(c.Restore(s)).To(MatchError(ErrSnapshotReleased))
		Expect(c.Restore(nil)).To(MatchError(ErrInvalidArgument))
	})

	It("should let snapshots outlive their instance", func() {
		s, err := c.Capture()
		Expect(err).NotTo(HaveOccurred())
		Expect(Destroy(c)).To(Succeed())

		Expect(c.Release(s)).To(Succeed())
		Expect(tracker.Outstanding()).To(BeZero())
		allocs, frees, foreign := tracker.Stats()
		Expect(allocs).To(Equal(frees))
		Expect(foreign).To(BeZero())
	})

	It("should report allocation failure on capture", func() {
		tracker.FailNext()
		_, err := c.Capture()
		Expect(err).To(MatchError(ErrAllocation))
	})
})

type otherModel struct{}

func (otherModel) Name() string             { return "other" }
func (otherModel) GUID() string             { return "{other}" }
func (otherModel) Variables() *signal.Table { return tableOf(5) }
func (otherModel) InitialEquations(*Env)    {}
func (otherModel) CalculateEquations(*Env)  {}
