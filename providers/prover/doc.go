// Package prover is a client for the proving backend's job API.
//
// A proof job is submitted with [Client.Submit], usually from a parsed
// [signature.Signature] via [NewProveRequest]. The backend runs jobs
// asynchronously: [Client.Tasks] lists them by state, [Client.Status] returns
// one job with its logs grouped by pipeline step, and [Client.Watch] polls a
// job until it reaches a terminal state.
//
// Basic usage:
//
//	sig, err := signature.Parse(source)
//	if err != nil {
//	    return err
//	}
//
//	client := prover.NewClient().WithObserver(observer)
//	resp, err := client.Submit(ctx, prover.NewProveRequest(sig, prover.DefaultSolverConfig()))
//	if err != nil {
//	    return err
//	}
//
//	err = client.Watch(ctx, resp.TaskID, prover.WatchOptions{}, func(details prover.TaskDetails) {
//	    fmt.Println(details.Status)
//	})
//
// The base URL and API key come from OWLGEBRA_API_URL and OWLGEBRA_API_KEY.
package prover
