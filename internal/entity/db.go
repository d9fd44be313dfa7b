package entity

import "skillchain/internal/entity/common"

type (
	StringArray = common.StringArray
	IntArray    = common.IntArray
	Meta        = common.Meta
	BaseParams  = common.BaseParams
)

// MaterialList stores a material composition as JSON text.
type MaterialList = common.JSONList[Material]
