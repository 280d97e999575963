package calib

import (
	"os"
	"strconv"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
)

// LoadDynamoDB fetches calibration rows from a DynamoDB table where each
// item has PK = motor name, Equation = fit-formula string, Threshold = PWM
// threshold. Used by deployments that keep calibration in a shared table
// instead of local JSON files.
func LoadDynamoDB(table string) *Checker {
	endpoint := os.Getenv("CALIBRATION_DB_ENDPOINT")
	if endpoint == "" {
		endpoint = "http://localhost:8000"
	}

	sess, err := session.NewSession(&aws.Config{
		Region:   aws.String("localhost"),
		Endpoint: &endpoint,
	})
	if err != nil {
		panic("Could not create a new DynamoDB session because " + err.Error())
	}

	client := dynamodb.New(sess)
	equations := make(map[string]string)
	thresholds := make(map[string]float64)

	input := &dynamodb.ScanInput{TableName: aws.String(table)}
	err = client.ScanPages(input, func(page *dynamodb.ScanOutput, lastPage bool) bool {
		for _, item := range page.Items {
			pk, ok := item["PK"]
			if !ok || pk.S == nil {
				continue
			}
			if eq, ok := item["Equation"]; ok && eq.S != nil {
				equations[*pk.S] = *eq.S
			}
			if th, ok := item["Threshold"]; ok && th.N != nil {
				v, err := strconv.ParseFloat(*th.N, 64)
				if err == nil {
					thresholds[*pk.S] = v
				}
			}
		}
		return true
	})
	if err != nil {
		panic("Error from DynamoDB: " + err.Error())
	}

	return New(equations, thresholds)
}
