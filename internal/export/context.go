package export

import "context"

type contextKey int

const exportIDKey contextKey = iota

// ContextWithExportID sets the id an export run reports in logs and its
// Summary. Handlers use it to stamp the id on the response before the run.
func ContextWithExportID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, exportIDKey, id)
}

// ExportIDFromContext returns the export id set by ContextWithExportID.
func ExportIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(exportIDKey).(string)
	return id
}
