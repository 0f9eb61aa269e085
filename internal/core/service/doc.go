// Package service holds the stateful side of the WizNote client.
//
// The API clients in package wizapi are stateless; the services here own
// the session and the data fetched with it:
//
//   - TokenManager: login state, the session token and its local expiry estimate
//   - AccountService: user info refresh and the key/value version listing
//   - DocumentService: document download and export to disk
//
// Dependencies are small interfaces satisfied by the wizapi clients so the
// services can be tested against fakes.
package service
