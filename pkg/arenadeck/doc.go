// Package arenadeck tails the MTG Arena Player.log and extracts the deck
// lists the client writes into it as embedded JSON.
//
// # Watching
//
// A [Watcher] follows the log file and reports every byte range appended to
// it as an [Event]. Truncation or replacement of the file is reported as an
// [EventReset]:
//
//	w, err := arenadeck.NewWatcherWithOptions(
//	    arenadeck.WithBackfill(true),
//	    arenadeck.WithLogger(logger),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer w.Close()
//
//	events, errs, err := w.Watch(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	rp := arenadeck.NewRecordParser(nil, logger)
//	for {
//	    select {
//	    case ev, ok := <-events:
//	        if !ok {
//	            return
//	        }
//	        if ev.Kind == arenadeck.EventReset {
//	            rp.Reset()
//	            continue
//	        }
//	        res, _ := rp.Feed(ctx, ev.Offset, ev.Data)
//	        for _, d := range res.Decks {
//	            fmt.Println(d.ID, d.Name)
//	        }
//	    case err, ok := <-errs:
//	        if !ok {
//	            return
//	        }
//	        log.Printf("watch: %v", err)
//	    }
//	}
//
// # Parsing
//
// [RecordParser] finds brace-delimited JSON blocks in the stream, keeps a
// block that is cut off until the rest arrives, and hands complete blocks to
// a [Parser]. [DefaultParser] knows the shapes MTG Arena uses; additional
// shapes can be described in YAML with the shape subpackage and combined
// using [ParserChain].
//
// For a one-off pass over an existing file use [ParseFile].
//
// # Platform Support
//
// Default log locations are known for Windows, macOS, and Linux (Steam Proton
// and Wine). File notifications use inotify where available; [ModeAuto]
// falls back to polling otherwise.
package arenadeck
