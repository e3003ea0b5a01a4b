package apicollectionv1

import (
	"github.com/fulldump/box"

	"github.com/fulldump/pipelinedb/service"
)

func BuildV1Collection(v1 *box.R, s service.Servicer) *box.R {

	collections := v1.Resource("/collections").
		WithActions(
			box.Get(listCollections),
			box.Post(createCollection),
		)

	v1.Resource("/collections/{collectionName}").
		WithActions(
			box.Get(getCollection),
			box.ActionPost(dropCollection).WithName("drop"),
			box.ActionPost(refreshCollection).WithName("refresh"),
			box.ActionPost(appendRecords).WithName("append"),
			box.ActionPost(listRecords).WithName("list"),
			box.ActionPost(getRecord).WithName("get"),
			box.ActionPost(setRecord).WithName("set"),
			box.ActionPost(deleteRecords).WithName("delete"),
			box.ActionPost(copyCollection).WithName("copy"),
			box.ActionPost(mapCollection).WithName("map"),
			box.ActionPost(filterCollection).WithName("filter"),
			box.ActionPost(reduceCollection).WithName("reduce"),
			box.ActionPost(randomSubset),
		)

	return collections
}
