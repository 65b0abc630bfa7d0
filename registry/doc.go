/*
Package registry maps Go types to their storage metadata.

Two registries are kept:
  - Index maps: the key attributes of a type and a template for each, used by
    the DynamoDB store to derive PK, SK and GSI keys from an item's fields.
  - Type decoders: EntityType name to decode function, used to read items of
    a mixed-type table back into their Go types.

Registration:

	func init() {
	    registry.RegisterTypeOf[Player]()
	    registry.RegisterIndexMap[Player](map[string]string{
	        "PK":     "CLUB#{ClubID}",
	        "SK":     "PLAYER#{ID}",
	        "GSI1PK": "EMAIL#{Email}",
	    })
	}

Both registries are safe for concurrent use. They are meant to be filled
during initialization; RegisterType panics on a duplicate name.
*/
package registry
