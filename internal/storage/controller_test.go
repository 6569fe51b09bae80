package storage

import (
	"context"

	"github.com/go-logr/logr"
	"github.com/google/go-cmp/cmp"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/san-kum/botcore/internal/async"
)

const maxTicks = 200

var _ = ginkgo.Describe("Controller", func() {
	var r *rig

	ginkgo.BeforeEach(func() {
		r = newRig(logr.Discard())
	})

	ginkgo.Describe("classifier attribution", func() {
		ginkgo.It("marks the front slot when stationary and aligned", func() {
			r.reading = ColorGreen
			r.tick()

			gomega.Expect(r.ctrl.Front()).To(gomega.Equal(Green))
			gomega.Expect(r.ctrl.Slots()).To(gomega.Equal([SlotCount]SlotContent{Green, Open, Open}))
		})

		ginkgo.It("ignores inconclusive readings", func() {
			r.ctrl.SetSlots([SlotCount]SlotContent{Purple, Open, Open})
			r.reading = None
			r.ctrl.ClearCommandQueue()
			r.tick()

			gomega.Expect(r.ctrl.Slots()[0]).To(gomega.Equal(Purple))
		})

		ginkgo.It("does not attribute while the indexer is moving", func() {
			r.carousel.frozen = true
			r.ctrl.Indexer().AdvanceClockwise(1)
			r.reading = ColorPurple
			r.tick()

			gomega.Expect(r.ctrl.Slots()).To(gomega.Equal([SlotCount]SlotContent{Open, Open, Open}))
		})

		ginkgo.It("queues making room once the front is occupied", func() {
			r.reading = ColorGreen
			r.tick()

			gomega.Expect(r.ctrl.Pending()).To(gomega.Equal([]Task{ReadyForCollection}))
		})
	})

	ginkgo.Describe("loading", func() {
		ginkgo.It("rotates exactly once when the colour is at the front", func() {
			r.ctrl.SetSlots([SlotCount]SlotContent{Green, Open, Open})
			f := r.ctrl.LoadGreen()

			r.tick()
			gomega.Expect(r.ctrl.State()).To(gomega.Equal(ReadyingGreen))
			gomega.Expect(r.triggers).To(gomega.Equal(0))

			res, ok := r.tickUntilDone(f, maxTicks)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(res).To(gomega.Equal(Fed))
			gomega.Expect(r.targets).To(gomega.Equal([]int64{-1}))
			gomega.Expect(r.triggers).To(gomega.Equal(1))
			gomega.Expect(r.ctrl.Slots()).To(gomega.Equal([SlotCount]SlotContent{Open, Open, Open}))
			gomega.Expect(r.ctrl.State()).To(gomega.Equal(Resting))
		})

		ginkgo.It("rotates clockwise when the colour is on the right", func() {
			r.ctrl.SetSlots([SlotCount]SlotContent{Open, Open, Purple})
			f := r.ctrl.LoadPurple()

			res, ok := r.tickUntilDone(f, maxTicks)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(res).To(gomega.Equal(Fed))
			gomega.Expect(r.targets).To(gomega.Equal([]int64{1}))
			gomega.Expect(r.triggers).To(gomega.Equal(1))
			gomega.Expect(r.ctrl.Count(Purple)).To(gomega.Equal(0))
		})

		ginkgo.It("feeds immediately when the colour is already on the left", func() {
			r.ctrl.SetSlots([SlotCount]SlotContent{Open, Green, Purple})
			f := r.ctrl.LoadGreen()

			r.tick()
			gomega.Expect(r.ctrl.State()).To(gomega.Equal(LoadingGreen))
			gomega.Expect(r.triggers).To(gomega.Equal(1))

			res, ok := r.tickUntilDone(f, maxTicks)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(res).To(gomega.Equal(Fed))
			gomega.Expect(r.targets).To(gomega.BeEmpty())
			if diff := cmp.Diff([SlotCount]SlotContent{Open, Open, Purple}, r.ctrl.Slots()); diff != "" {
				ginkgo.Fail("unexpected slots (-want +got):\n" + diff)
			}
		})

		ginkgo.It("abandons a load when the colour is absent", func() {
			r.ctrl.SetSlots([SlotCount]SlotContent{Purple, Open, Purple})
			f := r.ctrl.LoadGreen()

			res, ok := r.tickUntilDone(f, 1)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(res).To(gomega.Equal(Abandoned))
			gomega.Expect(r.triggers).To(gomega.Equal(0))
			gomega.Expect(r.targets).To(gomega.BeEmpty())
		})

		ginkgo.It("moves on to the next task in the same tick after abandoning", func() {
			missing := r.ctrl.LoadGreen()
			bump := r.ctrl.BumpClockwise()

			r.tick()
			gomega.Expect(missing.IsDone()).To(gomega.BeTrue())
			gomega.Expect(r.ctrl.State()).To(gomega.Equal(Bumping))

			res, ok := r.tickUntilDone(bump, maxTicks)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(res).To(gomega.Equal(Done))
		})

		ginkgo.It("feeds two pieces in queue order", func() {
			r.ctrl.SetSlots([SlotCount]SlotContent{Open, Green, Purple})
			first := r.ctrl.LoadGreen()
			second := r.ctrl.LoadPurple()

			res, ok := r.tickUntilDone(first, maxTicks)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(res).To(gomega.Equal(Fed))
			gomega.Expect(second.IsDone()).To(gomega.BeFalse())

			res, ok = r.tickUntilDone(second, maxTicks)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(res).To(gomega.Equal(Fed))
			gomega.Expect(r.triggers).To(gomega.Equal(2))
			gomega.Expect(r.ctrl.Slots()).To(gomega.Equal([SlotCount]SlotContent{Open, Open, Open}))
		})
	})

	ginkgo.Describe("making room", func() {
		ginkgo.DescribeTable("resolves against the current slots",
			func(slots [SlotCount]SlotContent, want TaskResult, targets []int64) {
				r.ctrl.SetSlots(slots)
				f := r.ctrl.ReadyForCollection()

				res, ok := r.tickUntilDone(f, maxTicks)
				gomega.Expect(ok).To(gomega.BeTrue())
				gomega.Expect(res).To(gomega.Equal(want))
				gomega.Expect(r.targets).To(gomega.Equal(targets))
			},
			ginkgo.Entry("full storage", [SlotCount]SlotContent{Green, Purple, Green}, Abandoned, []int64(nil)),
			ginkgo.Entry("front already open", [SlotCount]SlotContent{Open, Green, Purple}, Done, []int64(nil)),
			ginkgo.Entry("open on the left", [SlotCount]SlotContent{Green, Open, Purple}, Done, []int64{1}),
			ginkgo.Entry("open on the right", [SlotCount]SlotContent{Green, Purple, Open}, Done, []int64{-1}),
		)
	})

	ginkgo.Describe("bumping", func() {
		ginkgo.It("rotates one slot in each direction", func() {
			res, ok := r.tickUntilDone(r.ctrl.BumpCounterclockwise(), maxTicks)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(res).To(gomega.Equal(Done))
			gomega.Expect(r.ctrl.Indexer().CurrentIndex()).To(gomega.Equal(int64(-1)))
			gomega.Expect(r.ctrl.Indexer().NormalizedIndex()).To(gomega.Equal(2))

			res, ok = r.tickUntilDone(r.ctrl.BumpClockwise(), maxTicks)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(res).To(gomega.Equal(Done))
			gomega.Expect(r.ctrl.Indexer().CurrentIndex()).To(gomega.Equal(int64(0)))
		})

		ginkgo.It("stays bumping while the indexer is stuck", func() {
			r.carousel.frozen = true
			f := r.ctrl.BumpClockwise()
			r.tickN(10)

			gomega.Expect(f.IsDone()).To(gomega.BeFalse())
			gomega.Expect(r.ctrl.State()).To(gomega.Equal(Bumping))
			active, ok := r.ctrl.Active()
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(active).To(gomega.Equal(ClockwiseBump))

			r.carousel.frozen = false
			_, ok = r.tickUntilDone(f, maxTicks)
			gomega.Expect(ok).To(gomega.BeTrue())
		})
	})

	ginkgo.Describe("clearing the queue", func() {
		ginkgo.It("drops pending tasks but lets the active one finish", func() {
			r.carousel.frozen = true
			active := r.ctrl.BumpClockwise()
			r.tick()

			pending := []*async.Future[TaskResult]{
				r.ctrl.LoadGreen(),
				r.ctrl.BumpCounterclockwise(),
			}
			r.ctrl.ClearCommandQueue()

			for _, f := range pending {
				gomega.Expect(f.IsDone()).To(gomega.BeTrue())
				res, err := f.Get(context.Background())
				gomega.Expect(err).NotTo(gomega.HaveOccurred())
				gomega.Expect(res).To(gomega.Equal(Dropped))
			}
			gomega.Expect(r.ctrl.Pending()).To(gomega.BeEmpty())
			gomega.Expect(active.IsDone()).To(gomega.BeFalse())

			r.carousel.frozen = false
			res, ok := r.tickUntilDone(active, maxTicks)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(res).To(gomega.Equal(Done))
		})
	})
})
