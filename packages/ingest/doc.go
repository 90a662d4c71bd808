// Package ingest decodes recorded runner events, one JSON object per line,
// into lifecycle events and normalized records.
//
// Every line carries an "event" field:
//
//	{"event":"suite:start","spec":"cypress/integration/a.spec.js"}
//	{"event":"test:start","title":"logs commands"}
//	{"event":"log","type":"cy:command","message":"visit\t/"}
//	{"event":"log","type":"console-error","args":[null,"text",{"a":1}]}
//	{"event":"exchange:open","id":"1","type":"cy:xhr","method":"GET","url":"/comments/1"}
//	{"event":"exchange:resolve","id":"1","statusCode":200,"statusText":"OK","duration":12}
//	{"event":"test:end","state":"passed"}
//	{"event":"test:abort","reason":"runner crashed"}
//	{"event":"suite:end"}
//
// Console arguments that have no JSON form are written as
// {"$kind":"undefined"} or {"$kind":"function","value":"function () {}"}.
// A body written as {"$unknown":true} could not be read by the runner.
package ingest
