// Package flowrun provides a visual flow execution engine.
//
// A flow is a directed acyclic graph of typed nodes (llm calls, image
// generation, conditionals, merges, templates, text transforms, variable
// access) connected by data edges. The engine partitions the graph into
// dependency levels, runs each level's nodes concurrently, prunes branches a
// conditional did not select, and records a replayable per-node trace on the
// execution record.
//
// End-users typically interact with the engine via the Service façade
// exposed by the root package:
//
//	srv := flowrun.New()
//	_ = srv.Flows().Save(ctx, flow)
//	exec, _ := srv.NewExecution(ctx, flow.ID, map[string]interface{}{"topic": "go"}, nil)
//	exec, _ = srv.Run(ctx, exec.ID)
//	fmt.Println(exec.Data.FinalOutput)
//
// For asynchronous execution start the worker pool with srv.Start and use
// srv.ExecuteAsync; srv.Cancel requests cooperative cancellation observed at
// the next level boundary.
package flowrun
