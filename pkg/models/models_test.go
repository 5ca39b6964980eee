package models

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("FlexUint32", func() {
	DescribeTable("decoding",
		func(raw string, valid bool, value uint32) {
			var f FlexUint32
			Expect(json.Unmarshal([]byte(raw), &f)).To(Succeed())
			Expect(f.Valid).To(Equal(valid))
			Expect(f.Value).To(Equal(value))
		},
		Entry("number", `100`, true, uint32(100)),
		Entry("numeric string", `"100"`, true, uint32(100)),
		Entry("padded string", `" 7 "`, true, uint32(7)),
		Entry("null", `null`, false, uint32(0)),
		Entry("negative", `-1`, false, uint32(0)),
		Entry("fraction", `1.5`, false, uint32(0)),
		Entry("overflow", `4294967296`, false, uint32(0)),
		Entry("text", `"lots"`, false, uint32(0)),
		Entry("object", `{}`, false, uint32(0)),
	)

	It("encodes null when unset", func() {
		out, err := json.Marshal(struct {
			A FlexUint32 `json:"a"`
			B FlexUint32 `json:"b"`
		}{A: NewFlexUint32(3)})
		Expect(err).NotTo(HaveOccurred())
		Expect(string(out)).To(Equal(`{"a":3,"b":null}`))
	})
})

var _ = Describe("FlexBool", func() {
	DescribeTable("decoding",
		func(raw string, valid bool, value bool) {
			var f FlexBool
			Expect(json.Unmarshal([]byte(raw), &f)).To(Succeed())
			Expect(f.Valid).To(Equal(valid))
			Expect(f.Value).To(Equal(value))
		},
		Entry("true", `true`, true, true),
		Entry("false", `false`, true, false),
		Entry("zero", `0`, true, false),
		Entry("one", `1`, true, true),
		Entry("string true", `"true"`, true, true),
		Entry("string YES", `"YES"`, true, true),
		Entry("string n", `"n"`, true, false),
		Entry("string 0", `"0"`, true, false),
		Entry("unknown string", `"maybe"`, false, false),
		Entry("null", `null`, false, false),
	)
})

var _ = Describe("Volume", func() {
	It("decodes mixed field types", func() {
		raw := `{"id":"vol-1","size":"100","bootable":"true","multiattach":0}`
		var v Volume
		Expect(json.Unmarshal([]byte(raw), &v)).To(Succeed())
		Expect(*v.ID).To(Equal("vol-1"))
		Expect(v.Size).To(Equal(NewFlexUint32(100)))
		Expect(v.Bootable).To(Equal(NewFlexBool(true)))
		Expect(v.Multiattach).To(Equal(NewFlexBool(false)))
		Expect(v.Attachments).To(BeEmpty())
	})

	It("decodes a string count in the list response", func() {
		var resp VolumeListResponse
		Expect(json.Unmarshal([]byte(`{"count":"2","volumes":[]}`), &resp)).To(Succeed())
		Expect(resp.Count.Value).To(Equal(uint32(2)))
		Expect(resp.Volumes).To(BeEmpty())
	})
})

var _ = Describe("Subnet", func() {
	It("keeps the availability zone when present", func() {
		var s Subnet
		raw := `{"id":"subnet-1","name":"main","cidr":"10.0.0.0/24","availability_zone":"sa-brazil-1a"}`
		Expect(json.Unmarshal([]byte(raw), &s)).To(Succeed())
		Expect(s.AvailabilityZone).NotTo(BeNil())
		Expect(*s.AvailabilityZone).To(Equal("sa-brazil-1a"))
	})

	It("leaves the availability zone nil when absent", func() {
		var s Subnet
		Expect(json.Unmarshal([]byte(`{"id":"subnet-2","name":"b","cidr":"10.0.1.0/24"}`), &s)).To(Succeed())
		Expect(s.AvailabilityZone).To(BeNil())
	})
})

var _ = Describe("Image", func() {
	It("reads the double-underscore attributes", func() {
		raw := `{"id":"img","name":"Ubuntu","status":"active","__os_type":"Linux","__platform":"Ubuntu","__whole_image":true}`
		var img Image
		Expect(json.Unmarshal([]byte(raw), &img)).To(Succeed())
		Expect(*img.OSType).To(Equal("Linux"))
		Expect(*img.Platform).To(Equal("Ubuntu"))
		Expect(*img.WholeImage).To(BeTrue())
	})

	It("accepts whole_image without the prefix", func() {
		var img Image
		Expect(json.Unmarshal([]byte(`{"id":"img","name":"n","status":"active","whole_image":false}`), &img)).To(Succeed())
		Expect(img.WholeImage).NotTo(BeNil())
		Expect(*img.WholeImage).To(BeFalse())
	})
})

var _ = Describe("Server", func() {
	It("lists floating addresses", func() {
		raw := `{"id":"s1","name":"web","status":"ACTIVE","addresses":{"vpc-1":[
			{"addr":"192.168.0.10","version":4,"OS-EXT-IPS:type":"fixed"},
			{"addr":"100.1.2.3","version":4,"OS-EXT-IPS:type":"floating"}]}}`
		var s Server
		Expect(json.Unmarshal([]byte(raw), &s)).To(Succeed())
		Expect(s.PublicAddresses()).To(ConsistOf("100.1.2.3"))
	})

	It("serializes a create request with the API field names", func() {
		req := CreateServerRequest{Server: CreateServerBody{
			Name:       "web",
			ImageRef:   "img-1",
			FlavorRef:  "s6.small.1",
			VPCID:      "vpc-1",
			NICs:       []NIC{{SubnetID: "subnet-1"}},
			RootVolume: RootVolume{VolumeType: "SSD", Size: 40},
		}}
		out, err := json.Marshal(req)
		Expect(err).NotTo(HaveOccurred())

		var generic map[string]map[string]interface{}
		Expect(json.Unmarshal(out, &generic)).To(Succeed())
		Expect(generic["server"]).To(HaveKeyWithValue("imageRef", "img-1"))
		Expect(generic["server"]).To(HaveKeyWithValue("flavorRef", "s6.small.1"))
		Expect(generic["server"]).To(HaveKey("root_volume"))
		Expect(generic["server"]).NotTo(HaveKey("publicip"))
	})
})

var _ = Describe("NATGatewayListResponse", func() {
	It("decodes gateways", func() {
		raw := `{"nat_gateways":[{"id":"nat-1","name":"cce-nat","spec":"1","status":"ACTIVE",
			"router_id":"vpc-123","internal_network_id":"subnet-456","created_at":"2026-02-18 10:30:00"}]}`
		var resp NATGatewayListResponse
		Expect(json.Unmarshal([]byte(raw), &resp)).To(Succeed())
		Expect(resp.NATGateways).To(HaveLen(1))
		Expect(*resp.NATGateways[0].Status).To(Equal("ACTIVE"))
		Expect(*resp.NATGateways[0].InternalNetworkID).To(Equal("subnet-456"))
	})
})

var _ = Describe("Cluster", func() {
	It("exposes name, phase and version", func() {
		raw := `{"kind":"Cluster","apiVersion":"v3","metadata":{"name":"dev","uid":"u-1"},
			"spec":{"version":"v1.29"},"status":{"phase":"Available"}}`
		var c Cluster
		Expect(json.Unmarshal([]byte(raw), &c)).To(Succeed())
		Expect(c.Name()).To(Equal("dev"))
		Expect(c.UID()).To(Equal("u-1"))
		Expect(c.Phase()).To(Equal("Available"))
		Expect(c.Version()).To(Equal("v1.29"))
	})

	It("tolerates missing sections", func() {
		var c Cluster
		Expect(json.Unmarshal([]byte(`{"kind":"Cluster"}`), &c)).To(Succeed())
		Expect(c.Name()).To(BeEmpty())
		Expect(c.Phase()).To(BeEmpty())
	})
})
