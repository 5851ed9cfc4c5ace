// Package shutdown coordinates graceful termination of ecigate-server.
//
// A Handler waits for SIGINT, SIGTERM, an explicit Trigger or the end of
// a parent context, then runs the registered hooks in reverse order under
// a shared timeout:
//
//	h := shutdown.NewHandler(30 * time.Second)
//	h.OnShutdown("gateway", srv.Shutdown)
//	h.OnShutdown("journal", func(context.Context) error { return j.Close() })
//	err := h.Wait(ctx)
package shutdown
