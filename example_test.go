package drift_test

import (
	"context"
	"fmt"
	"strings"

	"github.com/gordian-engine/drift"
)

func ExampleMap() {
	words := drift.NewEvents[string]()
	defer words.Dispose()

	upper := drift.Map(strings.ToUpper, words)
	defer upper.Dispose()

	ch := make(chan drift.Box[string], 4)
	upper.Listen(ch)

	words.Push("hello")
	words.Complete("world")

	for b := range ch {
		fmt.Println(b.Val(), b.IsCompleted())
	}

	// Output:
	// HELLO false
	// WORLD true
}

func ExampleReduceInit() {
	nums := drift.NewEvents[int]()
	defer nums.Dispose()

	sum := drift.ReduceInit(func(acc, v int) int { return acc + v }, 0, nums)
	defer sum.Dispose()

	ch := make(chan drift.Box[int], 8)
	sum.Listen(ch)

	nums.Push(1, 2, 3)
	nums.Complete(4)

	for b := range ch {
		fmt.Println(b.Val())
	}

	// Output:
	// 0
	// 1
	// 3
	// 6
	// 10
}

func ExampleEvents_Await() {
	ticks := drift.NewEvents[int]()
	defer ticks.Dispose()

	go ticks.Push(42)

	v, err := ticks.Await(context.Background())
	fmt.Println(v, err)

	// Output:
	// 42 <nil>
}

func ExampleNewBehavior() {
	n := 0
	b := drift.NewBehavior(func() int {
		n++
		return n
	})

	fmt.Println(b.Read(), b.Read())

	done := drift.NewCompletableBehavior(func() drift.Box[string] {
		return drift.Completed("fixed")
	})
	fmt.Println(done.Read(), done.IsComplete())

	// Output:
	// 1 2
	// fixed true
}

func ExampleEvents_Hold() {
	src := drift.NewEvents[int]()
	defer src.Dispose()

	doubled := drift.Map(func(v int) int { return v * 2 }, src)
	release := doubled.Hold()

	// Disposing the only child would otherwise dispose doubled too.
	child := drift.Map(func(v int) int { return v + 1 }, doubled)
	child.Dispose()

	src.Push(5)
	v, _ := doubled.Await(context.Background())
	fmt.Println(v)

	release()
	<-doubled.Done()
	fmt.Println(doubled.IsComplete())

	// Output:
	// 10
	// true
}
