package validators

import "go.mongodb.org/mongo-driver/bson"

var HotelValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"name",
			"city",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"city": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"country": bson.M{
				"bsonType":  "string",
				"maxLength": 100,
			},

			"contact_email": bson.M{
				"bsonType":  "string",
				"maxLength": 254,
			},

			"contact_phone": bson.M{
				"bsonType":  "string",
				"maxLength": 20,
			},

			"time_zone": bson.M{
				"bsonType":  "string",
				"maxLength": 64,
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
