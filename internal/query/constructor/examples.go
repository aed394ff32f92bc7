package constructor

// fewShotExamples pins the time-zone and relative-time conventions the
// query constructor must reproduce verbatim (spec.md §4.1). Ported from
// the (question, structured-query) pairs in
// original_source/opensearch_query_constructor.py; this set is part of
// the system contract, not prompt flavor text.
const fewShotExamples = `
Q: What are errors in prod last hour?
A: {"text":"","filter":{"and":[{"eq":{"attribute":"level","value":"error"}},{"eq":{"attribute":"ns","value":"prod"}},{"range":{"attribute":"time","op":"gte","value":"now-1h"}}]}}

Q: Show me warnings from the payments service today.
A: {"text":"","filter":{"and":[{"eq":{"attribute":"level","value":"warn"}},{"eq":{"attribute":"svc","value":"payments"}},{"range":{"attribute":"time","op":"gte","value":"now/d"}}]}}

Q: What happened with order PSV-745559?
A: {"text":"","filter":{"eq":{"attribute":"msg","value":"PSV-745559"}}}

Q: Any timeouts in the last 15 minutes?
A: {"text":"timeout","filter":{"range":{"attribute":"time","op":"gte","value":"now-15m"}}}

Q: Errors this week in staging.
A: {"text":"","filter":{"and":[{"eq":{"attribute":"level","value":"error"}},{"eq":{"attribute":"ns","value":"staging"}},{"range":{"attribute":"time","op":"gte","value":"now/w"}}]}}

Q: What broke between 9am and 10am today?
A: {"text":"","filter":{"and":[{"range":{"attribute":"time","op":"gte","value":"now/d+9h0m0s"}},{"range":{"attribute":"time","op":"lte","value":"now/d+10h0m0s"}}]}}

Q: Errors since yesterday at 2026-07-29T14:00:00 in Moscow time.
A: {"text":"","filter":{"and":[{"eq":{"attribute":"level","value":"error"}},{"range":{"attribute":"time","op":"gte","value":"2026-07-29T14:00:00+03:00"}}]}}

Q: Any 500s from the checkout service this month?
A: {"text":"500","filter":{"and":[{"eq":{"attribute":"svc","value":"checkout"}},{"range":{"attribute":"time","op":"gte","value":"now/M"}}]}}

Q: Find connection refused errors.
A: {"text":"connection refused","filter":{"eq":{"attribute":"level","value":"error"}}}

Q: What's going on in namespace billing right now?
A: {"text":"","filter":{"and":[{"eq":{"attribute":"ns","value":"billing"}},{"range":{"attribute":"time","op":"gte","value":"now-5m"}}]}}

Q: Logs from two weeks ago about retries.
A: {"text":"retry","filter":{"and":[{"range":{"attribute":"time","op":"gte","value":"now-2w"}},{"range":{"attribute":"time","op":"lte","value":"now-1w"}}]}}

Q: Critical errors only, any service, last 30 minutes.
A: {"text":"","filter":{"and":[{"eq":{"attribute":"level","value":"critical"}},{"range":{"attribute":"time","op":"gte","value":"now-30m"}}]}}

Q: Show me everything logged in the last day.
A: {"text":"","filter":{"range":{"attribute":"time","op":"gte","value":"now-24h"}}}
`
