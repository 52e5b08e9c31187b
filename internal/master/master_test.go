package master

import (
	"context"
	"errors"
	"log/slog"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/san-kum/cbdfmu/internal/arena"
	_ "github.com/san-kum/cbdfmu/internal/fmi2"
	_ "github.com/san-kum/cbdfmu/internal/fmi3"
	"github.com/san-kum/cbdfmu/internal/fmu"
	"github.com/san-kum/cbdfmu/internal/models/ball"
	"github.com/san-kum/cbdfmu/internal/models/pid"
	"github.com/san-kum/cbdfmu/internal/protocol"
	"github.com/san-kum/cbdfmu/internal/signal"
)

func logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(GinkgoWriter, nil))
}

func open(version string, model fmu.Model, alloc arena.Allocator) protocol.Slave {
	s, err := protocol.Open(version, protocol.Params{Model: model, InstanceName: model.Name(), Allocator: alloc})
	Expect(err).NotTo(HaveOccurred())
	return s
}

var pidConfig = Config{
	StopTime: 1,
	StepSize: 0.1,
	Inputs:   map[string]float64{"Integrator.IN1": 1},
	Params:   map[string]float64{"Integrator.IC": 0},
	Outputs:  []string{"OUT", "Integrator.OUT1"},
}

var _ = Describe("Master", func() {
	for _, version := range []string{"2.0", "3.0"} {
		version := version
		Context("over FMI "+version, func() {
			It("should record every communication point", func() {
				tr := arena.NewTracker(nil)
				m := New(logger())
				var seen []float64
				m.AddObserver(ObserverFunc(func(t float64, _ []float64) { seen = append(seen, t) }))

				res, err := m.Run(context.Background(), open(version, pid.New(), tr), pidConfig)

				Expect(err).NotTo(HaveOccurred())
				Expect(res.StepsTaken).To(Equal(10))
				Expect(res.Times).To(HaveLen(11))
				Expect(seen).To(Equal(res.Times))
				Expect(res.Terminated).To(BeFalse())

				out, ok := res.Column("OUT")
				Expect(ok).To(BeTrue())
				Expect(out[1]).To(BeNumerically("~", 590, 1e-9))
				Expect(out[2]).To(BeNumerically("~", 392, 1e-9))

				integral, _ := res.Column("Integrator.OUT1")
				Expect(integral[10]).To(BeNumerically("~", 0.9, 1e-9))
				Expect(tr.Outstanding()).To(BeZero())
			})

			It("should stop early when the model asks to", func() {
				res, err := New(logger()).Run(context.Background(), open(version, ball.New(), nil), Config{
					StopTime: 30,
					StepSize: 0.1,
					Params:   map[string]float64{"max_bounces": 2},
				})

				Expect(err).NotTo(HaveOccurred())
				Expect(res.Terminated).To(BeTrue())
				Expect(res.StepsTaken).To(BeNumerically("<", 300))
				Expect(res.Outputs).To(ContainElements("h", "v", "bounces"))
			})
		})
	}

	It("should reject bad configurations and still free the slave", func() {
		tr := arena.NewTracker(nil)
		_, err := New(logger()).Run(context.Background(), open("2.0", pid.New(), tr), Config{StopTime: 1})
		Expect(err).To(HaveOccurred())
		Expect(tr.Outstanding()).To(BeZero())
	})

	It("should reject unknown signal names", func() {
		cfg := pidConfig
		cfg.Inputs = map[string]float64{"nope": 1}
		_, err := New(logger()).Run(context.Background(), open("2.0", pid.New(), nil), cfg)
		Expect(err).To(MatchError(signal.ErrUnknownName))
	})

	It("should stop on cancellation", func() {
		ctx, cancel := context.WithCancel(context.Background())
		m := New(logger())
		m.AddObserver(ObserverFunc(func(t float64, _ []float64) {
			if t >= 0.3 {
				cancel()
			}
		}))

		res, err := m.Run(ctx, open("3.0", pid.New(), nil), pidConfig)
		Expect(err).To(MatchError(context.Canceled))
		Expect(res.StepsTaken).To(Equal(3))
	})
})

var _ = Describe("Ensemble", func() {
	It("should run members concurrently on separate instances", func() {
		pool := arena.NewTracker(arena.NewPool())
		e := NewEnsemble(New(logger()), func(run int) (protocol.Slave, error) {
			return protocol.Open("2.0", protocol.Params{Model: pid.New(), Allocator: pool})
		}, 2)

		cfgs := make([]Config, 4)
		for i := range cfgs {
			cfgs[i] = pidConfig
			cfgs[i].Inputs = map[string]float64{"Integrator.IN1": float64(i)}
		}

		results, err := e.Run(context.Background(), cfgs)
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(4))
		for i, r := range results {
			Expect(r.Values[1][0]).To(BeNumerically("~", 590*float64(i), 1e-9))
		}
		Expect(pool.Outstanding()).To(BeZero())
	})

	It("should fail when a member cannot be opened", func() {
		boom := errors.New("boom")
		e := NewEnsemble(New(logger()), func(run int) (protocol.Slave, error) {
			if run == 1 {
				return nil, boom
			}
			return protocol.Open("3.0", protocol.Params{Model: pid.New()})
		}, 0)

		_, err := e.Run(context.Background(), []Config{pidConfig, pidConfig})
		Expect(err).To(MatchError(boom))
	})
})
