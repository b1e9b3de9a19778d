package validators

import "go.mongodb.org/mongo-driver/bson"

var BackupValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"type",
			"status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
			},

			"type": bson.M{
				"bsonType": "string",
				"enum": []string{
					"hotel",
					"full_system",
				},
			},

			"hotel_id": bson.M{
				"bsonType":  "string",
				"maxLength": 24,
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"queued",
					"running",
					"success",
					"failed",
				},
			},

			"size_bytes": bson.M{
				"bsonType": []string{"long", "int"},
				"minimum":  0,
			},

			"storage_path": bson.M{
				"bsonType":  "string",
				"maxLength": 1024,
			},

			"error": bson.M{
				"bsonType":  "string",
				"maxLength": 2000,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},

			"updated_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
