package validators

import "go.mongodb.org/mongo-driver/bson"

var AuditLogValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"timestamp",
			"actor_id",
			"action",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"timestamp": bson.M{
				"bsonType": "date",
			},

			"actor_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 100,
			},

			"actor_name": bson.M{
				"bsonType":  "string",
				"maxLength": 200,
			},

			"action": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 100,
			},

			"hotel_id": bson.M{
				"bsonType":  "string",
				"maxLength": 24,
			},

			"metadata": bson.M{
				"bsonType": "object",
				"additionalProperties": bson.M{
					"bsonType": "string",
				},
			},
		},
	},
}
