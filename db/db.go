package db

import (
	"strconv"

	"github.com/jsphweid/meterdetect/constants"
	"github.com/jsphweid/meterdetect/model"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
)

// GetMeterAnnotations fetches hand-curated meter annotations for up to 10
// filenames. Files with no annotation are simply absent from the result.
func GetMeterAnnotations(filenames []string) map[string]model.MeterAnnotation {
	if len(filenames) > 10 {
		panic("Not supposed to pass in more than 10 filenames!")
	}

	res := make(map[string]model.MeterAnnotation)

	if len(filenames) == 0 {
		return res
	}

	var keys []map[string]*dynamodb.AttributeValue
	for _, filename := range filenames {
		key := make(map[string]*dynamodb.AttributeValue)
		key["PK"] = &dynamodb.AttributeValue{
			S: aws.String(filename),
		}
		keys = append(keys, key)
	}

	endpoint := "http://localhost:8000"
	session, err := session.NewSession(&aws.Config{
		Region:   aws.String("localhost"),
		Endpoint: &endpoint,
	})
	if err != nil {
		panic("Could not create a new DynamoDB session because " + err.Error())
	}

	client := dynamodb.New(session)
	input := &dynamodb.BatchGetItemInput{
		RequestItems: map[string]*dynamodb.KeysAndAttributes{
			constants.AnnotationTable: {Keys: keys},
		},
	}
	dbres, err := client.BatchGetItem(input)
	if err != nil {
		panic("Error from DynamoDB: " + err.Error())
	}

	for _, v := range dbres.Responses[constants.AnnotationTable] {
		var a model.MeterAnnotation
		if v["Numerator"] != nil && v["Numerator"].N != nil {
			n, _ := strconv.Atoi(*v["Numerator"].N)
			a.Numerator = n
		}
		if v["Denominator"] != nil && v["Denominator"].N != nil {
			n, _ := strconv.Atoi(*v["Denominator"].N)
			a.Denominator = n
		}
		if v["AnacrusisSubBeats"] != nil && v["AnacrusisSubBeats"].N != nil {
			n, _ := strconv.Atoi(*v["AnacrusisSubBeats"].N)
			a.AnacrusisSubBeats = n
		}
		res[*v["PK"].S] = a
	}

	return res
}
