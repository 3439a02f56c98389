package atomic_float

import (
	"math"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestAtomicFloat64(t *testing.T) {
	Convey("When Add is called", t, func() {
		Convey("When multiple writers add to the float value concurrently", func() {
			af := NewAtomicFloat64(0)
			num_ops := 3000
			num_writers := 200

			start := make(chan struct{})
			wg := sync.WaitGroup{}
			wg.Add(num_writers)
			adder := func() {
				<-start
				for i := 0; i < num_ops; i++ {
					af.Add(1.0)
				}
				wg.Done()
			}

			for i := 0; i < num_writers; i++ {
				go adder()
			}

			// Wait for goroutines to begin
			time.Sleep(time.Millisecond * 10)
			close(start)
			wg.Wait()
			So(af.Load(), ShouldEqual, float64(num_ops*num_writers))
		})

		Convey("When multiple writers increment and decrement the float value concurrently", func() {
			af := &AtomicFloat64{}
			num_ops := 3000
			num_writers := 200

			start := make(chan struct{})
			wg := sync.WaitGroup{}
			wg.Add(num_writers * 2)
			worker := func(addend float64) {
				<-start
				for i := 0; i < num_ops; i++ {
					af.Add(addend)
				}
				wg.Done()
			}

			for i := 0; i < num_writers; i++ {
				go worker(1.0)
				go worker(-1.0)
			}

			time.Sleep(time.Millisecond * 10)
			close(start)
			wg.Wait()
			So(af.Load(), ShouldEqual, float64(0.0))
		})
	})

	Convey("When StoreMin is called concurrently", t, func() {
		af := NewAtomicFloat64(math.Inf(1))
		wg := sync.WaitGroup{}
		for i := 1; i <= 100; i++ {
			wg.Add(1)
			go func(val float64) {
				defer wg.Done()
				af.StoreMin(val)
			}(float64(i))
		}
		wg.Wait()
		So(af.Load(), ShouldEqual, 1.0)
		So(af.StoreMin(5), ShouldEqual, 1.0)
	})
}
