// Package preference manages a client's light/dark display preference.
//
// A Store is created per client and passed to whoever needs it; there is no
// package-level instance. Initialize picks the persisted value, then the
// ambient signal, then Light:
//
//	store := preference.NewStore(storage,
//		preference.WithAmbient(preference.ClientHint(r)),
//		preference.WithApplier(func(t preference.Theme) { page.Dark = t.IsDark() }),
//	)
//	store.Initialize(ctx)
//	store.Toggle(ctx)
//
// Storage may be MemoryStorage, RedisStorage or a request-scoped
// CookieStorage. Storage failures never reach the caller: reads fall back to
// the ambient signal and writes leave the preference in memory only.
package preference
