// Package tokenmeter provides an embeddable usage meter for generative
// text APIs. It counts requests and tokens per model across rolling
// daily, weekly and monthly windows, with optional persistence to
// Valkey or Redis so lifetime counters survive restarts.
//
//	meter, _ := tokenmeter.New(ctx,
//	    tokenmeter.WithValkey("localhost:6379", ""),
//	)
//	defer meter.Close()
//
//	meter.Record("gemini-2.0-flash", 120, 480, 600)
//	report := meter.Usage()
//	fmt.Println(report.DailyRequests, report.Models["gemini-2.0-flash"].DailyTotalTokens)
//
// Without a database option the meter keeps counters in memory only.
package tokenmeter
