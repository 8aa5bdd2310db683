package verify

import "expvar"

var (
	piecesHashed        = expvar.NewInt("relinkPiecesHashed")
	bytesHashed         = expvar.NewInt("relinkBytesHashed")
	verdictCacheHits    = expvar.NewInt("relinkVerdictCacheHits")
	candidateOpenErrors = expvar.NewInt("relinkCandidateOpenErrors")
)
