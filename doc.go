// Package safely turns failures into values.
//
// Every guarded operation converts returned errors and recovered panics
// into a single vocabulary, [Result], so call sites branch on data instead
// of on control flow:
//
//	r := safely.Safe(func() (int, error) {
//	    return strconv.Atoi(input)
//	})
//	if safely.IsFailure(r) {
//	    return r.Err()
//	}
//
// # Normalizing Failures
//
// [NormalizeError] coerces any value into an error. Errors pass through
// unchanged; every other value (nil included) becomes an [*Error] whose
// message is fmt.Sprint of the value. Recovered panics go through the same
// rule and also carry the goroutine stack. Use [ValueOf] to get the original
// value back and [IsTimeout] to recognise deadline failures.
//
// # Executors
//
// [New] captures the logging configuration once and returns an
// [Executor]. Because Go methods cannot be generic, the operations are
// reached through the typed view [For]:
//
//	exec := safely.New(safely.WithSlogLogger(logger))
//	users := safely.For[*User](exec)
//
//   - [Ops.Safe]: run a function inline.
//   - [Ops.SafeAsync]: run a function as a [Future] and wait for it under a
//     context.
//   - [Ops.SafeAll]: settle a batch of futures concurrently, one Result per
//     future, in input order. One failure never affects another item.
//   - [Ops.SafeObservable]: expose a function as a cold [Observable] that
//     emits its value, or terminates with its error.
//   - [Ops.SafeObservableAll]: settle a batch of futures and emit the
//     ordered results as a single value.
//   - [Ops.SafeWithRetries]: retry a function with exponential backoff,
//     optional jitter, and a per-attempt deadline.
//
// Every failure an operation produces is passed to the executor's logger
// exactly once (including each failed retry attempt) unless logging is
// disabled with [WithLogErrors]. The default logger writes a structured
// line to standard error.
//
// The package-level functions [Safe], [SafeAsync], [SafeAll],
// [SafeObservable], [SafeObservableAll] and [SafeWithRetries] use the
// zero-configuration executor returned by [Default].
//
// # Futures and Deadlines
//
// [Future] is the eventual outcome of running work. Start one with [Go],
// build settled ones with [Resolve] and [Reject], or bridge callback APIs
// with [NewPromise]. [RaceTimeout] races a future against a timer; the
// loser is not cancelled, only ignored.
//
// # Retries
//
// [RetryOptions] controls [Ops.SafeWithRetries]. The delay after the
// zero-based attempt n is InitialDelay * 2^n (see [CalculateDelay]), or a
// uniformly random value below it with Jitter. Attempts are strictly
// sequential and each one calls the function afresh.
//
// # Observables
//
// [Observable] is a minimal subscribe/unsubscribe push stream. Build custom
// sources with [NewObservable], [Just] and [Throw]. Consume with
// [Observable.Subscribe], [Observable.Collect], or pull values through
// [Observable.Stream].
//
// # Observability
//
// [WithMetrics] records failures, retry attempts, timeouts and operation
// latency in Prometheus collectors created by [NewMetrics]. [WithOnRetry]
// registers a hook that runs before every backoff sleep, and [WithClock]
// replaces the clock used for those sleeps.
package safely
