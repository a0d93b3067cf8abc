// Package cookie writes and reads HTTP cookies with shared defaults and
// optional HMAC-SHA256 signatures.
//
// Signed cookies survive secret rotation: the first secret signs, every
// configured secret is tried on verification.
//
//	mgr, err := cookie.New([]string{secret}, cookie.WithSecure(true))
//	mgr.SetSigned(w, "theme", "dark", cookie.WithMaxAge(365*24*60*60))
//	theme, err := mgr.GetSigned(r, "theme")
package cookie
