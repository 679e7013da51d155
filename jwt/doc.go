// Package jwt issues and verifies signed session tokens. A session token
// carries only the session id (sid) and registered claims; lifecycle state
// stays in the session store.
package jwt
