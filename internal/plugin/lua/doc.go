// Package lua hosts plugin scripts in a sandboxed gopher-lua state.
//
// The state opens only the base, package, table, string and math libraries,
// removes the loaders that read from disk and redirects print to a
// configurable writer. Every DoString call runs under a deadline:
//
//	st := lua.NewState(lua.WithExecutionTimeout(time.Second))
//	defer st.Close()
//
//	if err := registry.InjectAll(st.LuaState()); err != nil {
//	    return err
//	}
//	err := st.DoString(ctx, "highlight.lua", script)
package lua
