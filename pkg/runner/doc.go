/*
Package runner drives batch generation on top of a tracery engine.

A Runner expands one template a number of times, or every template read line
by line from an input stream, and hands each result to a Handler. Two handlers
ship with the package:

  - TextHandler: one result per line, optionally passed through a
    ContentRenderer (the CLI plugs a glamour markdown renderer in here).
  - JSONHandler: one JSON object per line (NDJSON), suitable for pipes.

Templates coming from users pass through SanitizeInput first, which enforces a
size limit, rejects invalid UTF-8 and strips terminal control characters.

# Usage

	r := runner.NewRunner(
		runner.WithHandler(runner.NewJSONHandler(os.Stdout)),
	)
	if err := r.Run(ctx, engine, "#origin#", 10); err != nil {
		log.Fatal(err)
	}
*/
package runner
