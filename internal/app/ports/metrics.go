package ports

// ResultCode names how a committed action ended, for metrics.
type ResultCode string

const (
	ResultSailed       ResultCode = "sailed"
	ResultSunk         ResultCode = "sunk"
	ResultBought       ResultCode = "bought"
	ResultSold         ResultCode = "sold"
	ResultExchanged    ResultCode = "exchanged"
	ResultCommissioned ResultCode = "commissioned"
)

type ActionMetrics interface {
	RecordSuccess(resultCode ResultCode)
	RecordConflict()
	RecordFailure()
}
