// Package runscope is a thin transport wrapper over the Runscope REST API.
//
// Every method takes the bearer token as its first argument after the context,
// builds the request URI from fixed templates, and returns the raw response body.
// Ids are interpolated verbatim; nothing is path-escaped.
//
// Usage:
//
//	client, err := runscope.New(runscope.DefaultBaseURL, runscope.WithTimeout(30*time.Second))
//	resp, err := client.GetBuckets(ctx, token)
//	env, err := runscope.DecodeEnvelope[[]runscope.BucketRecord](resp)
package runscope
