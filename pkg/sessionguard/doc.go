// Package sessionguard decides whether a protected view may render by
// following the client's session through an identity provider.
//
// A Guard belongs to one mounted view. Mount subscribes to the provider's
// change notifications and then performs a single session check:
//
//	g := sessionguard.New(oracle, sessionguard.WithLogger(log))
//	defer g.Release()
//
//	switch g.Mount(ctx) {
//	case sessionguard.StateVerified:
//		// render protected content
//	default:
//		cmd := <-g.Redirects()
//		// navigate to cmd.To
//	}
//
// The guard starts in StateInitializing, moves to StateVerified when the
// provider reports a live session and to StateAbsent otherwise. Provider
// errors and check timeouts count as "no session" and are never retried.
// StateAbsent is terminal; every later sign-out notification re-issues the
// redirect command.
//
// Redirects are one-way commands delivered on a buffered channel, so the
// transition logic has no dependency on any navigation system. Release
// cancels an in-flight check, unsubscribes and closes that channel; results
// that arrive afterwards are discarded.
//
// Oracle implementations: MemoryOracle (in-process), RedisProvider (session
// keys plus Pub/Sub) and PostgresProvider (auth_sessions table plus
// LISTEN/NOTIFY). Middleware, Watch and Run integrate guards with net/http,
// datastar streams and plain scoped work.
package sessionguard
