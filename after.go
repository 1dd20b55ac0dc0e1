package goless

import "time"

// After returns a channel that receives the current time once, after
// d has elapsed, and is then closed. It exists to compose timeouts
// with Select by adding an RCase over a timer channel; this is the
// idiom every timeout-via-select caller reaches for, modeled directly
// on time.After.
func After(d time.Duration) Channel {
	ch := Chan(1)
	Go(func() {
		sched.Sleep(d)
		_ = ch.Send(time.Now())
		_ = ch.Close()
	})
	return ch
}
