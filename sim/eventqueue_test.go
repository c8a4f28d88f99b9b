package sim

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	gomock "go.uber.org/mock/gomock"
)

var _ = Describe("EventQueueImpl", func() {
	var (
		mockCtrl *gomock.Controller
		queue    *EventQueueImpl
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		queue = NewEventQueue()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should pop in order", func() {
		numEvents := 100
		for i := 0; i < numEvents; i++ {
			event := NewMockEvent(mockCtrl)
			event.EXPECT().
				Time().
				Return(VTimeInMs(rand.Float64() * 1000)).
				AnyTimes()
			queue.Push(event)
		}

		now := VTimeInMs(-1)
		for i := 0; i < numEvents; i++ {
			event := queue.Pop()
			Expect(event.Time()).To(BeNumerically(">=", now))
			now = event.Time()
		}
	})

	It("should pop same-time events in insertion order", func() {
		numEvents := 10
		events := make([]*MockEvent, 0, numEvents)
		for i := 0; i < numEvents; i++ {
			event := NewMockEvent(mockCtrl)
			event.EXPECT().Time().Return(VTimeInMs(42)).AnyTimes()
			events = append(events, event)
			queue.Push(event)
		}

		for i := 0; i < numEvents; i++ {
			Expect(queue.Pop()).To(BeIdenticalTo(events[i]))
		}
	})

	It("should panic when popping from an empty queue", func() {
		Expect(func() { queue.Pop() }).To(Panic())
	})

	It("should peek without removing", func() {
		event := NewMockEvent(mockCtrl)
		event.EXPECT().Time().Return(VTimeInMs(1)).AnyTimes()
		queue.Push(event)

		Expect(queue.Peek()).To(BeIdenticalTo(event))
		Expect(queue.Len()).To(Equal(1))
	})
})
