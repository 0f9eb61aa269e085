// Package connection provides the HTTP transport of the WizNote client.
//
//   - http.go: HTTPClient, request building, request IDs and metrics
//   - envelope.go: response envelope decoding and error mapping
//
// Every command response is an envelope {returnCode, returnMessage,
// externCode, result}; return code 200 means success and any other code
// is mapped to a domain error. Requests are never retried.
package connection
